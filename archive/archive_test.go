package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAndPrune(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	checkIn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	path, err := w.Write("comfort_inn_beckley", checkIn, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(filepath.Base(path), "comfort_inn_beckley_2026-03-10") {
		t.Fatalf("unexpected archive name %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("archive content mangled: %s", data)
	}

	// A fresh file survives pruning.
	removed, err := w.Prune(time.Hour)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing pruned, got %d", removed)
	}

	// Backdate the file and prune again.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}
	removed, err = w.Prune(time.Hour)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned, got %d", removed)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pruned file still exists")
	}
}

func TestPrune_MissingDir(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "never-created"))
	removed, err := w.Prune(time.Hour)
	if err != nil {
		t.Fatalf("prune of missing dir should be a no-op: %v", err)
	}
	if removed != 0 {
		t.Fatalf("got %d", removed)
	}
}
