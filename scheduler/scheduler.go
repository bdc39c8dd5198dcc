package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amills-vpmgmt/vpmgmt-rates/config"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
	"github.com/amills-vpmgmt/vpmgmt-rates/services"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
)

// Triggerable allows background workers to be triggered manually.
type Triggerable interface {
	Trigger()
}

type Scheduler struct {
	cfg    *config.Config
	rates  *services.RateService
	store  *storage.SQLiteStore
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}

	retentionWorker Triggerable
}

func New(cfg *config.Config, rates *services.RateService, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		rates:  rates,
		store:  store,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

// SetRetentionWorker registers the retention worker for manual triggering.
func (s *Scheduler) SetRetentionWorker(w Triggerable) {
	s.retentionWorker = w
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			if err := s.rates.RunAll(ctx); err != nil {
				log.Printf("Scheduled run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if err := s.rates.RunAll(ctx); err != nil {
						log.Printf("Scheduled run error: %v", err)
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.store.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.store.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// commandCheckIn parses a fetch_hotel date in the market timezone, so a
// date sent near midnight lands on the day the market means. An empty or
// malformed date falls back to now.
func commandCheckIn(date string) time.Time {
	if date != "" {
		if d, err := time.ParseInLocation("2006-01-02", date, services.MarketLocation()); err == nil {
			return d
		}
	}
	return time.Now()
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdFetchNow:
		return s.rates.RunAll(ctx)
	case models.CmdFetchHotel:
		params, err := s.store.ParseCommandParams(cmd)
		if err != nil {
			return err
		}
		res, err := s.rates.FetchHotel(ctx, params.Hotel, commandCheckIn(params.Date))
		if err != nil {
			return err
		}
		if res == nil {
			log.Printf("No rate found for %s", params.Hotel)
		} else {
			log.Printf("%s: $%d (%s)", params.Hotel, res.Summary.Primary.Price, res.Summary.Primary.Category)
		}
		return nil
	case models.CmdPause:
		s.rates.Pause()
		log.Println("Rate service paused")
	case models.CmdResume:
		s.rates.Resume()
		log.Println("Rate service resumed")
	case models.CmdRunRetention:
		if s.retentionWorker != nil {
			s.retentionWorker.Trigger()
			log.Println("Retention worker triggered via command")
		}
	}

	return nil
}

func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.rates.RunAll(ctx)
}
