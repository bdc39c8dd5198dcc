package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RateRun is one execution of the roster fetch (all hotels x all date labels).
type RateRun struct {
	ID           int64      `json:"id" db:"id"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at" db:"finished_at"`
	Status       RunStatus  `json:"status" db:"status"`
	QueriesMade  int        `json:"queries_made" db:"queries_made"`
	RatesFound   int        `json:"rates_found" db:"rates_found"`
	RatesMissing int        `json:"rates_missing" db:"rates_missing"`
	ErrorsCount  int        `json:"errors_count" db:"errors_count"`
}

// RunStats summarizes recent run outcomes for the dashboard.
type RunStats struct {
	LastRunAt         *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus     string     `json:"last_run_status" db:"last_run_status"`
	TotalRuns         int        `json:"total_runs" db:"total_runs"`
	TotalSnapshots    int        `json:"total_snapshots" db:"total_snapshots"`
	SuccessRate       float64    `json:"success_rate" db:"success_rate"`
	AvgRunDurationSec int        `json:"avg_run_duration_sec" db:"avg_run_duration_sec"`
}
