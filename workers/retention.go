package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/archive"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
)

// RetentionWorker prunes old raw response archives and stale run logs.
type RetentionWorker struct {
	archive       *archive.Writer
	store         *storage.SQLiteStore
	maxArchiveAge time.Duration
	maxLogAge     time.Duration
	triggerCh     chan struct{}
	logFunc       LogFunc
}

func NewRetentionWorker(ar *archive.Writer, store *storage.SQLiteStore, maxArchiveAge, maxLogAge time.Duration) *RetentionWorker {
	return &RetentionWorker{
		archive:       ar,
		store:         store,
		maxArchiveAge: maxArchiveAge,
		maxLogAge:     maxLogAge,
		triggerCh:     make(chan struct{}, 1),
		logFunc:       NoOpLogger,
	}
}

func (w *RetentionWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *RetentionWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *RetentionWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Retention worker stopping")
			return
		case <-ticker.C:
			w.prune()
		case <-w.triggerCh:
			log.Println("Retention worker triggered manually")
			w.prune()
		}
	}
}

func (w *RetentionWorker) prune() {
	if w.archive != nil && w.maxArchiveAge > 0 {
		removed, err := w.archive.Prune(w.maxArchiveAge)
		if err != nil {
			log.Printf("Archive prune error: %v", err)
			w.logFunc(models.LogLevelError, "retention", fmt.Sprintf("archive prune: %v", err))
		} else if removed > 0 {
			log.Printf("Pruned %d archived responses older than %s", removed, w.maxArchiveAge)
			w.logFunc(models.LogLevelInfo, "retention", fmt.Sprintf("pruned %d archived responses", removed))
		}
	}

	if w.store != nil && w.maxLogAge > 0 {
		removed, err := w.store.PruneLogs(w.maxLogAge)
		if err != nil {
			log.Printf("Log prune error: %v", err)
			w.logFunc(models.LogLevelError, "retention", fmt.Sprintf("log prune: %v", err))
		} else if removed > 0 {
			log.Printf("Pruned %d run logs older than %s", removed, w.maxLogAge)
		}
	}
}
