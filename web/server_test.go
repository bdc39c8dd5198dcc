package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/amills-vpmgmt/vpmgmt-rates/config"
	"github.com/amills-vpmgmt/vpmgmt-rates/services"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	ops, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { ops.Close() })

	cfg := &config.Config{Roster: &config.Roster{}}
	rates := services.NewRateService(cfg, nil, nil, ops, nil)

	return NewServer(":0", nil, ops, rates)
}

func TestHealthz(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unparseable body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("got %v", body)
	}
}

func TestStats(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body struct {
		Paused bool `json:"paused"`
		Stats  struct {
			TotalRuns int `json:"total_runs"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unparseable body: %v", err)
	}
	if body.Paused {
		t.Fatalf("fresh service should not be paused")
	}
	if body.Stats.TotalRuns != 0 {
		t.Fatalf("got %d runs", body.Stats.TotalRuns)
	}
}

func TestRatesWithoutHistoryStore(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/rates", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without Postgres, got %d", rec.Code)
	}
}

func TestHistoryRequiresHotel(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/history", nil))

	// The store check runs first; without Postgres the endpoint is 503
	// regardless of parameters.
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestDashboardWithoutHistoryStore(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without Postgres, got %d", rec.Code)
	}
}
