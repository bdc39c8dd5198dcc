package workers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/archive"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
)

func TestRetentionPrune(t *testing.T) {
	dataDir := t.TempDir()
	ar := archive.NewWriter(dataDir)

	checkIn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	path, err := ar.Write("comfort_inn_beckley", checkIn, []byte(`{}`))
	if err != nil {
		t.Fatalf("archive write failed: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer store.Close()

	var logged []string
	w := NewRetentionWorker(ar, store, 24*time.Hour, 24*time.Hour)
	w.SetLogger(func(level models.LogLevel, source, message string) {
		logged = append(logged, message)
	})

	w.prune()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expired archive file should be gone")
	}
	if len(logged) == 0 {
		t.Fatalf("expected the prune to be logged")
	}
}

func TestRetentionTriggerNonBlocking(t *testing.T) {
	w := NewRetentionWorker(nil, nil, time.Hour, time.Hour)
	// No Run loop is draining the channel; repeated triggers must not block.
	w.Trigger()
	w.Trigger()
	w.Trigger()
}
