package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/config"
	"github.com/amills-vpmgmt/vpmgmt-rates/fetcher"
	"github.com/amills-vpmgmt/vpmgmt-rates/identity"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
	"github.com/amills-vpmgmt/vpmgmt-rates/report"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
)

// marketTZ anchors "today" for date labels; rates are for a US/Eastern
// market regardless of where the daemon runs.
const marketTZ = "America/New_York"

// RateService runs the roster through the fetcher and fans results out to
// the rate-history store and the report file. One hotel/date at a time,
// strictly sequential; a single hotel failing never aborts the run.
type RateService struct {
	cfg     *config.Config
	fetcher *fetcher.Fetcher
	brand   *fetcher.BrandFetcher
	pg      *storage.PostgresStore
	ops     *storage.SQLiteStore
	report  *report.Writer

	// paused is flipped by the command poller and read by the run and
	// dashboard goroutines.
	paused atomic.Bool
}

func NewRateService(cfg *config.Config, f *fetcher.Fetcher, pg *storage.PostgresStore, ops *storage.SQLiteStore, rep *report.Writer) *RateService {
	return &RateService{
		cfg:     cfg,
		fetcher: f,
		pg:      pg,
		ops:     ops,
		report:  rep,
	}
}

// SetBrandFetcher enables the brand-site cross-check for roster hotels
// that configure a booking URL and price selector.
func (s *RateService) SetBrandFetcher(b *fetcher.BrandFetcher) {
	s.brand = b
}

// SyncRoster upserts the configured hotels into the history store so
// dashboard joins always have a row per tracked property.
func (s *RateService) SyncRoster(ctx context.Context) error {
	if s.pg == nil {
		return nil
	}
	for _, hc := range s.cfg.Roster.Hotels {
		hotel := &models.Hotel{
			Name:    hc.Name,
			Address: hc.Address,
			Brand:   hc.Brand,
			IsOurs:  hc.Ours,
		}
		if err := s.pg.UpsertHotel(ctx, hotel, s.cfg.Roster.Market.City); err != nil {
			return fmt.Errorf("upsert hotel %s: %w", hc.Name, err)
		}
	}
	return nil
}

// RunAll fetches every roster hotel for every tracked date label, persists
// what was found, and writes the report payload.
func (s *RateService) RunAll(ctx context.Context) error {
	if s.paused.Load() {
		log.Println("Rate service is paused, skipping run")
		return nil
	}

	run := &models.RateRun{
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	runID, err := s.ops.CreateRun(run)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	run.ID = runID

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if run.Status == models.RunStatusRunning {
			if run.ErrorsCount > 0 && run.RatesFound == 0 {
				run.Status = models.RunStatusFailed
			} else {
				run.Status = models.RunStatusCompleted
			}
		}
		if err := s.ops.UpdateRun(run); err != nil {
			log.Printf("Warning: failed to update run %d: %v", run.ID, err)
		}
	}()

	labels := DateLabels(marketToday())
	payload := report.NewPayload()

	for _, dl := range labels {
		s.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Fetching %s (%s)", dl.Label, dl.Date.Format("2006-01-02")), "")

		for _, hc := range s.cfg.Roster.Hotels {
			run.QueriesMade++
			res, err := s.fetchOne(ctx, hc, dl.Date)
			if err != nil {
				s.log(run.ID, models.LogLevelError, fmt.Sprintf("%s %s: %v", hc.Name, dl.Date.Format("2006-01-02"), err), identity.HotelKey(hc.Name))
				run.ErrorsCount++
				payload.SetMissing(dl.Label, hc.Name)
				continue
			}
			if res == nil {
				run.RatesMissing++
				payload.SetMissing(dl.Label, hc.Name)
				continue
			}

			run.RatesFound++
			res.RunID = &run.ID
			payload.SetRate(dl.Label, hc.Name, res.Summary.Primary.Price)

			if dl.Label == "Today" {
				s.brandCrossCheck(run.ID, hc, dl.Date, res.Summary.Primary.Price)
			}

			if s.pg != nil {
				if err := s.pg.InsertRateSnapshot(ctx, res, dl.Label); err != nil {
					s.log(run.ID, models.LogLevelWarn, fmt.Sprintf("snapshot %s: %v", hc.Name, err), res.HotelKey)
					run.ErrorsCount++
				}
			}
		}
	}

	if s.report != nil {
		if err := s.report.Write(payload); err != nil {
			s.log(run.ID, models.LogLevelError, fmt.Sprintf("write report: %v", err), "")
			run.ErrorsCount++
		} else {
			log.Printf("Wrote %s", s.report.Path())
		}
	}

	s.log(run.ID, models.LogLevelInfo,
		fmt.Sprintf("Completed: %d queries, %d found, %d missing, %d errors",
			run.QueriesMade, run.RatesFound, run.RatesMissing, run.ErrorsCount), "")

	return nil
}

// FetchHotel runs the pipeline for a single roster hotel and check-in
// date, outside a full run. Returns nil when the hotel is not in the
// roster or no plausible rate was found.
func (s *RateService) FetchHotel(ctx context.Context, hotelName string, checkIn time.Time) (*models.RateResult, error) {
	for _, hc := range s.cfg.Roster.Hotels {
		if identity.HotelKey(hc.Name) != identity.HotelKey(hotelName) {
			continue
		}
		return s.fetchOne(ctx, hc, checkIn)
	}
	return nil, fmt.Errorf("hotel not in roster: %s", hotelName)
}

func (s *RateService) fetchOne(ctx context.Context, hc *config.HotelConfig, checkIn time.Time) (*models.RateResult, error) {
	return s.fetcher.Fetch(ctx, fetcher.Request{
		HotelName: hc.Name,
		Address:   hc.Address,
		City:      s.cfg.Roster.Market.City,
		Brand:     hc.Brand,
		CheckIn:   checkIn,
		Adults:    s.cfg.SerpAPI.Adults,
	})
}

// brandCrossCheck compares the search-derived rate against the hotel's own
// booking page. Disagreement is logged, never persisted; the search rate
// stays authoritative.
func (s *RateService) brandCrossCheck(runID int64, hc *config.HotelConfig, checkIn time.Time, searchPrice int) {
	if s.brand == nil || hc.BrandURL == "" || hc.PriceCSS == "" {
		return
	}

	nightly, ok, err := s.brand.FetchNightly(hc.BrandURL, hc.PriceCSS, checkIn, 1)
	if err != nil {
		s.log(runID, models.LogLevelWarn, fmt.Sprintf("brand check %s: %v", hc.Name, err), identity.HotelKey(hc.Name))
		return
	}
	if !ok {
		return
	}

	diff := nightly - searchPrice
	if diff < 0 {
		diff = -diff
	}
	if diff > searchPrice/10 {
		s.log(runID, models.LogLevelWarn,
			fmt.Sprintf("brand site shows $%d for %s, search shows $%d", nightly, hc.Name, searchPrice),
			identity.HotelKey(hc.Name))
	}
}

func (s *RateService) Pause()  { s.paused.Store(true) }
func (s *RateService) Resume() { s.paused.Store(false) }
func (s *RateService) IsPaused() bool {
	return s.paused.Load()
}

func (s *RateService) log(runID int64, level models.LogLevel, message, hotelKey string) {
	log.Printf("[%s] %s", level, message)
	if err := s.ops.Log(&runID, level, message, hotelKey); err != nil {
		log.Printf("Warning: failed to persist log: %v", err)
	}
}

// marketToday is today's date in the market timezone.
func marketToday() time.Time {
	loc := MarketLocation()
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
