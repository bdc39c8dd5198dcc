package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amills-vpmgmt/vpmgmt-rates/selector"
)

type Config struct {
	SerpAPI   SerpAPIConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Bounds    BoundsConfig
	Dashboard DashboardConfig
	Retention RetentionConfig
	Proxy     ProxyConfig
	DBPath    string
	DataDir   string
	Roster    *Roster
}

type SerpAPIConfig struct {
	Key      string
	BaseURL  string
	GL       string
	HL       string
	Currency string
	Adults   int
	Timeout  time.Duration
	Retries  int
}

type PostgresConfig struct {
	DBURL string
}

type RedisConfig struct {
	Addr string
	TTL  time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type BoundsConfig struct {
	Min int
	Max int
}

type DashboardConfig struct {
	Addr string
}

type RetentionConfig struct {
	MaxArchiveAge time.Duration
	MaxLogAge     time.Duration
}

// ProxyConfig routes brand-site fetches through a residential proxy.
// SerpAPI traffic never goes through it.
type ProxyConfig struct {
	URL string
}

// Roster is the tracked market and hotel list, loaded from YAML.
type Roster struct {
	Market MarketConfig   `yaml:"market"`
	Hotels []*HotelConfig `yaml:"hotels"`
}

type MarketConfig struct {
	City  string `yaml:"city"`
	State string `yaml:"state"`
}

type HotelConfig struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Brand    string `yaml:"brand"` // provider group key, e.g. brand_choice
	Ours     bool   `yaml:"ours"`
	BrandURL string `yaml:"brand_url"` // booking page for the brand-site fetcher, optional
	PriceCSS string `yaml:"price_css"` // CSS selector for the total price on that page
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SerpAPI: SerpAPIConfig{
			Key:      os.Getenv("SERPAPI_KEY"),
			BaseURL:  getEnv("SERPAPI_URL", "https://serpapi.com/search.json"),
			GL:       getEnv("SERPAPI_GL", "us"),
			HL:       getEnv("SERPAPI_HL", "en"),
			Currency: getEnv("SERPAPI_CURRENCY", "USD"),
			Adults:   getEnvInt("SERPAPI_ADULTS", 2),
			Timeout:  getEnvDuration("SERPAPI_TIMEOUT", 25*time.Second),
			Retries:  getEnvInt("SERPAPI_RETRIES", 2),
		},
		Postgres: PostgresConfig{
			DBURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
			TTL:  getEnvDuration("REDIS_CACHE_TTL", 6*time.Hour),
		},
		Scheduler: SchedulerConfig{
			Cron:     os.Getenv("FETCH_CRON"),
			Interval: getEnvDuration("FETCH_INTERVAL", 0),
		},
		Bounds: BoundsConfig{
			Min: getEnvInt("NIGHTLY_MIN", 40),
			Max: getEnvInt("NIGHTLY_MAX", 600),
		},
		Dashboard: DashboardConfig{
			Addr: getEnv("DASHBOARD_ADDR", ":8090"),
		},
		Retention: RetentionConfig{
			MaxArchiveAge: getEnvDuration("ARCHIVE_MAX_AGE", 30*24*time.Hour),
			MaxLogAge:     getEnvDuration("LOG_MAX_AGE", 14*24*time.Hour),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("SCRAPE_PROXY_URL"),
		},
		DBPath:  getEnv("DB_PATH", "rates.db"),
		DataDir: getEnv("DATA_DIR", "data"),
	}

	roster, err := loadRoster(getEnv("ROSTER_PATH", "config/hotels.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Roster = roster

	return cfg, nil
}

func loadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Roster{}, nil
		}
		return nil, err
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	for _, h := range roster.Hotels {
		if h.Name == "" {
			return nil, fmt.Errorf("roster %s: hotel with empty name", path)
		}
		if h.Brand != "" && !selector.KnownGroup(h.Brand) {
			return nil, fmt.Errorf("roster %s: hotel %q: unknown brand group %q", path, h.Name, h.Brand)
		}
	}

	return &roster, nil
}

// ValidateFetch checks the preconditions for making live queries. Missing
// credentials are a hard failure here, before any request is attempted.
func (c *Config) ValidateFetch() error {
	if c.SerpAPI.Key == "" {
		return fmt.Errorf("SERPAPI_KEY not set")
	}
	if c.Roster == nil || len(c.Roster.Hotels) == 0 {
		return fmt.Errorf("roster is empty")
	}
	if c.Roster.Market.City == "" {
		return fmt.Errorf("roster market city not set")
	}
	if c.Bounds.Min <= 0 || c.Bounds.Max < c.Bounds.Min {
		return fmt.Errorf("invalid nightly bounds %d..%d", c.Bounds.Min, c.Bounds.Max)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
