// Package archive writes raw search responses to disk for later replay and
// debugging. Archival never gates the fetch pipeline; failures are logged
// by the caller and the classified result is returned regardless.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Writer struct {
	dir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dir: filepath.Join(dataDir, "raw")}
}

// Write stores one raw response body under a hotel-and-date keyed filename.
func (w *Writer) Write(hotelKey string, checkIn time.Time, raw []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s_%d.json", hotelKey, checkIn.Format("2006-01-02"), time.Now().UnixMilli())
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Prune removes archived responses older than maxAge. Returns how many
// files were deleted.
func (w *Writer) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
