package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/amills-vpmgmt/vpmgmt-rates/models"
)

// SQLiteStore holds operational data: run records, run logs, and pending
// commands from external tooling. Rate history lives in Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rate_runs (
		id INTEGER PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		queries_made INTEGER DEFAULT 0,
		rates_found INTEGER DEFAULT 0,
		rates_missing INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		hotel_key TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_logs_run ON run_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON rate_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.RateRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO rate_runs (started_at, status, queries_made, rates_found, rates_missing, errors_count)
		VALUES (?, ?, 0, 0, 0, 0)`,
		run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.RateRun) error {
	_, err := s.db.Exec(`
		UPDATE rate_runs SET finished_at = ?, status = ?, queries_made = ?,
			rates_found = ?, rates_missing = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.QueriesMade,
		run.RatesFound, run.RatesMissing, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, hotelKey string) error {
	_, err := s.db.Exec(`
		INSERT INTO run_logs (run_id, timestamp, level, message, hotel_key)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, hotelKey)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, COALESCE(params, '{}'), created_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params string
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt); err != nil {
			return nil, err
		}
		cmd.Params = []byte(params)
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	var params models.CommandParams
	if len(cmd.Params) == 0 {
		return &params, nil
	}
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

func (s *SQLiteStore) GetLastRunTime() (time.Time, error) {
	var t sql.NullTime
	err := s.db.QueryRow(`SELECT MAX(started_at) FROM rate_runs`).Scan(&t)
	if err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// GetRecentLogs returns the newest run logs, most recent first.
func (s *SQLiteStore) GetRecentLogs(limit int) ([]models.RunLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, COALESCE(hotel_key, '')
		FROM run_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.RunLog
	for rows.Next() {
		var l models.RunLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.HotelKey); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// PruneLogs deletes run logs older than maxAge. Returns the rows removed.
func (s *SQLiteStore) PruneLogs(maxAge time.Duration) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM run_logs WHERE timestamp < ?`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetRunStats aggregates run history for the dashboard status panel.
func (s *SQLiteStore) GetRunStats() (*models.RunStats, error) {
	var stats models.RunStats
	var lastAt sql.NullTime
	var lastStatus sql.NullString

	err := s.db.QueryRow(`
		SELECT MAX(started_at), COUNT(*), COALESCE(SUM(rates_found), 0),
			COALESCE(AVG(CASE WHEN status = 'completed' THEN 1.0 ELSE 0.0 END), 0),
			COALESCE(AVG(CAST(strftime('%s', finished_at) - strftime('%s', started_at) AS INTEGER)), 0)
		FROM rate_runs`).Scan(&lastAt, &stats.TotalRuns, &stats.TotalSnapshots, &stats.SuccessRate, &stats.AvgRunDurationSec)
	if err != nil {
		return nil, err
	}
	if lastAt.Valid {
		stats.LastRunAt = &lastAt.Time
	}

	err = s.db.QueryRow(`SELECT status FROM rate_runs ORDER BY started_at DESC LIMIT 1`).Scan(&lastStatus)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	stats.LastRunStatus = lastStatus.String

	return &stats, nil
}
