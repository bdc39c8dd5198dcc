// Package report writes the per-run rates payload consumed by the
// dashboard and any file-based consumers:
//
//	{"generated_at": "...", "rates_by_day": {"Today": {"Hampton Inn Beckley": 132, ...}}}
//
// Hotels with no plausible rate appear as "N/A".
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const NotAvailable = "N/A"

type Payload struct {
	GeneratedAt string                            `json:"generated_at"`
	RatesByDay  map[string]map[string]interface{} `json:"rates_by_day"`
}

func NewPayload() *Payload {
	return &Payload{
		RatesByDay: make(map[string]map[string]interface{}),
	}
}

// SetRate records a found nightly rate under a date label.
func (p *Payload) SetRate(label, hotelName string, price int) {
	p.day(label)[hotelName] = price
}

// SetMissing records an N/A cell. A missing rate is a normal outcome, not
// an error.
func (p *Payload) SetMissing(label, hotelName string) {
	p.day(label)[hotelName] = NotAvailable
}

func (p *Payload) day(label string) map[string]interface{} {
	if p.RatesByDay[label] == nil {
		p.RatesByDay[label] = make(map[string]interface{})
	}
	return p.RatesByDay[label]
}

type Writer struct {
	path string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{path: filepath.Join(dataDir, "rates.json")}
}

func (w *Writer) Path() string {
	return w.path
}

// Write stamps and persists the payload atomically (write then rename).
func (w *Writer) Write(p *Payload) error {
	p.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return err
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, w.path)
}
