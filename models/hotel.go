package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Hotel is one tracked property from the roster config.
type Hotel struct {
	ID      uuid.UUID `json:"id" yaml:"-"`
	Name    string    `json:"name" yaml:"name"`
	Address string    `json:"address" yaml:"address"`
	Brand   string    `json:"brand" yaml:"brand"` // provider group key, e.g. brand_choice
	IsOurs  bool      `json:"is_ours" yaml:"ours"`
}

// RateResult is one fetched-and-classified rate for a hotel on a check-in
// date, as persisted and as handed to the report builder.
type RateResult struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	HotelKey  string          `json:"hotel_key" db:"hotel_key"`
	HotelName string          `json:"hotel_name" db:"hotel_name"`
	CheckIn   time.Time       `json:"check_in" db:"check_in"`
	Summary   RateSummary     `json:"summary"`
	Query     string          `json:"query" db:"query"`
	Relaxed   bool            `json:"relaxed" db:"relaxed"` // true if the city fallback query produced it
	FetchedAt time.Time       `json:"fetched_at" db:"fetched_at"`
	RunID     *int64          `json:"run_id" db:"run_id"`
	Raw       json.RawMessage `json:"-" db:"-"`
}
