package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amills-vpmgmt/vpmgmt-rates/identity"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
)

// PostgresStore holds the durable rate history: the hotel roster and one
// snapshot row per successful hotel/date query.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS hotels (
		id UUID PRIMARY KEY,
		fingerprint TEXT UNIQUE NOT NULL,
		hotel_key TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		brand TEXT,
		is_ours BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rate_snapshots (
		id UUID PRIMARY KEY,
		hotel_key TEXT NOT NULL,
		hotel_name TEXT NOT NULL,
		check_in DATE NOT NULL,
		label TEXT,
		price INTEGER,
		category TEXT,
		basis TEXT,
		source TEXT,
		confidence REAL,
		relaxed BOOLEAN DEFAULT FALSE,
		query TEXT,
		ranges JSONB,
		providers JSONB,
		fetched_at TIMESTAMPTZ NOT NULL,
		run_id BIGINT
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_hotel_date ON rate_snapshots(hotel_key, check_in, fetched_at DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON rate_snapshots(fetched_at DESC);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// UpsertHotel registers a roster hotel, keyed by its market fingerprint.
func (s *PostgresStore) UpsertHotel(ctx context.Context, h *models.Hotel, city string) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO hotels (id, fingerprint, hotel_key, name, address, brand, is_ours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (fingerprint) DO UPDATE SET
			hotel_key = EXCLUDED.hotel_key,
			name = EXCLUDED.name,
			address = COALESCE(NULLIF(EXCLUDED.address, ''), hotels.address),
			brand = COALESCE(NULLIF(EXCLUDED.brand, ''), hotels.brand),
			is_ours = EXCLUDED.is_ours,
			updated_at = NOW()
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		h.ID, identity.Fingerprint(h.Name, city), identity.HotelKey(h.Name),
		h.Name, h.Address, h.Brand, h.IsOurs, now, now,
	).Scan(&h.ID)
}

// InsertRateSnapshot persists one classified result under a date label.
func (s *PostgresStore) InsertRateSnapshot(ctx context.Context, r *models.RateResult, label string) error {
	if r.Summary.Primary == nil {
		return fmt.Errorf("snapshot without primary for %s", r.HotelKey)
	}

	ranges, err := json.Marshal(r.Summary.Ranges)
	if err != nil {
		return fmt.Errorf("marshal ranges: %w", err)
	}
	providers, err := json.Marshal(r.Summary.Providers)
	if err != nil {
		return fmt.Errorf("marshal providers: %w", err)
	}

	p := r.Summary.Primary
	_, err = s.pool.Exec(ctx, `
		INSERT INTO rate_snapshots (
			id, hotel_key, hotel_name, check_in, label, price, category, basis,
			source, confidence, relaxed, query, ranges, providers, fetched_at, run_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		r.ID, r.HotelKey, r.HotelName, r.CheckIn, label, p.Price, p.Category, p.Basis,
		p.Source, p.Confidence, r.Relaxed, r.Query, ranges, providers, r.FetchedAt, r.RunID,
	)
	return err
}

// RateRow is one dashboard row: the latest snapshot for a hotel and
// check-in date.
type RateRow struct {
	HotelKey   string
	HotelName  string
	CheckIn    time.Time
	Label      string
	Price      int
	Category   models.OfferCategory
	Basis      models.Basis
	Confidence float64
	FetchedAt  time.Time
	Ranges     map[models.OfferCategory]models.CategoryRange
}

// GetLatestRates returns the most recent snapshot per hotel for one label.
func (s *PostgresStore) GetLatestRates(ctx context.Context, label string) ([]RateRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (hotel_key)
			hotel_key, hotel_name, check_in, label, price, category, basis, confidence, fetched_at, ranges
		FROM rate_snapshots
		WHERE label = $1
		ORDER BY hotel_key, fetched_at DESC`, label)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRateRows(rows)
}

// GetRateHistory returns snapshots for one hotel, newest first.
func (s *PostgresStore) GetRateHistory(ctx context.Context, hotelKey string, limit int) ([]RateRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hotel_key, hotel_name, check_in, label, price, category, basis, confidence, fetched_at, ranges
		FROM rate_snapshots
		WHERE hotel_key = $1
		ORDER BY fetched_at DESC
		LIMIT $2`, hotelKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRateRows(rows)
}

func scanRateRows(rows pgx.Rows) ([]RateRow, error) {
	var out []RateRow
	for rows.Next() {
		var r RateRow
		var ranges []byte
		if err := rows.Scan(&r.HotelKey, &r.HotelName, &r.CheckIn, &r.Label,
			&r.Price, &r.Category, &r.Basis, &r.Confidence, &r.FetchedAt, &ranges); err != nil {
			return nil, err
		}
		if len(ranges) > 0 {
			if err := json.Unmarshal(ranges, &r.Ranges); err != nil {
				return nil, fmt.Errorf("unmarshal ranges: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
