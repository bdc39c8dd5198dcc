package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/services"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
)

const defaultHistoryLimit = 50

// Server exposes the rate dashboard and a small JSON API over the
// snapshot store.
type Server struct {
	pg    *storage.PostgresStore
	ops   *storage.SQLiteStore
	rates *services.RateService
	srv   *http.Server
}

func NewServer(addr string, pg *storage.PostgresStore, ops *storage.SQLiteStore, rates *services.RateService) *Server {
	s := &Server{pg: pg, ops: ops, rates: rates}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleDashboard)
	mux.HandleFunc("GET /api/rates", s.handleRates)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Start() {
	go func() {
		log.Printf("Dashboard listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Dashboard server error: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Beckley Rate Tracker</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 6px 12px; text-align: left; }
th { background: #f0f0f0; }
td.price { text-align: right; font-variant-numeric: tabular-nums; }
.stale { color: #999; }
</style>
</head>
<body>
<h1>Nightly Rates — {{.Label}}</h1>
<table>
<tr><th>Hotel</th><th>Check-in</th><th>Rate</th><th>Category</th><th>Basis</th><th>Fetched</th></tr>
{{range .Rows}}
<tr>
<td>{{.HotelName}}</td>
<td>{{.CheckIn.Format "2006-01-02"}}</td>
<td class="price">${{.Price}}</td>
<td>{{.Category}}</td>
<td>{{.Basis}}</td>
<td class="{{if .Stale}}stale{{end}}">{{.FetchedAt.Format "Jan 2 15:04"}}</td>
</tr>
{{else}}
<tr><td colspan="6">No rates collected yet.</td></tr>
{{end}}
</table>
<p>Labels: <a href="/?label=Today">Today</a> | <a href="/?label=Tomorrow">Tomorrow</a> | <a href="/?label=Friday">Friday</a></p>
</body>
</html>`))

type dashboardRow struct {
	storage.RateRow
	Stale bool
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.pg == nil {
		http.Error(w, "rate history store not configured", http.StatusServiceUnavailable)
		return
	}

	label := r.URL.Query().Get("label")
	if label == "" {
		label = "Today"
	}

	rows, err := s.pg.GetLatestRates(r.Context(), label)
	if err != nil {
		log.Printf("Dashboard query error: %v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	view := make([]dashboardRow, 0, len(rows))
	for _, row := range rows {
		view = append(view, dashboardRow{
			RateRow: row,
			Stale:   time.Since(row.FetchedAt) > 24*time.Hour,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, map[string]interface{}{
		"Label": label,
		"Rows":  view,
	}); err != nil {
		log.Printf("Dashboard render error: %v", err)
	}
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	if s.pg == nil {
		writeError(w, http.StatusServiceUnavailable, "rate history store not configured")
		return
	}

	label := r.URL.Query().Get("label")
	if label == "" {
		label = "Today"
	}

	rows, err := s.pg.GetLatestRates(r.Context(), label)
	if err != nil {
		log.Printf("Rates query error: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, map[string]interface{}{"label": label, "rates": rows})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.pg == nil {
		writeError(w, http.StatusServiceUnavailable, "rate history store not configured")
		return
	}

	hotel := r.URL.Query().Get("hotel")
	if hotel == "" {
		writeError(w, http.StatusBadRequest, "hotel parameter required")
		return
	}

	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.pg.GetRateHistory(r.Context(), hotel, limit)
	if err != nil {
		log.Printf("History query error: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, map[string]interface{}{"hotel": hotel, "history": rows})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ops.GetRunStats()
	if err != nil {
		log.Printf("Stats query error: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, map[string]interface{}{
		"stats":  stats,
		"paused": s.rates.IsPaused(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	logs, err := s.ops.GetRecentLogs(limit)
	if err != nil {
		log.Printf("Logs query error: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, map[string]interface{}{"logs": logs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Response encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":%q}`+"\n", msg)
}
