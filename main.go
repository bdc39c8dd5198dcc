package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/archive"
	"github.com/amills-vpmgmt/vpmgmt-rates/cache"
	"github.com/amills-vpmgmt/vpmgmt-rates/config"
	"github.com/amills-vpmgmt/vpmgmt-rates/extract"
	"github.com/amills-vpmgmt/vpmgmt-rates/fetcher"
	"github.com/amills-vpmgmt/vpmgmt-rates/httputil"
	"github.com/amills-vpmgmt/vpmgmt-rates/logging"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
	"github.com/amills-vpmgmt/vpmgmt-rates/report"
	"github.com/amills-vpmgmt/vpmgmt-rates/scheduler"
	"github.com/amills-vpmgmt/vpmgmt-rates/services"
	"github.com/amills-vpmgmt/vpmgmt-rates/storage"
	"github.com/amills-vpmgmt/vpmgmt-rates/web"
	"github.com/amills-vpmgmt/vpmgmt-rates/workers"
)

var (
	fetchNow = flag.Bool("fetch", false, "Run one rate fetch cycle and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("daemon.log", 0)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting vpmgmt-rates...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateFetch(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	log.Printf("Tracking %d hotels in %s, %s", len(cfg.Roster.Hotels), cfg.Roster.Market.City, cfg.Roster.Market.State)
	for _, h := range cfg.Roster.Hotels {
		marker := ""
		if h.Ours {
			marker = " (ours)"
		}
		log.Printf("  - %s%s", h.Name, marker)
	}

	clients := httputil.NewClients(cfg.SerpAPI, cfg.Proxy)

	ctx := context.Background()

	serpClient, err := fetcher.NewSerpClient(cfg.SerpAPI, clients.API)
	if err != nil {
		log.Fatalf("Failed to create SerpAPI client: %v", err)
	}

	bounds := extract.Bounds{Min: cfg.Bounds.Min, Max: cfg.Bounds.Max}
	f := fetcher.New(serpClient, bounds, cfg.SerpAPI.Retries)

	ar := archive.NewWriter(cfg.DataDir)
	f.SetArchive(ar)

	// Response cache is optional; runs uncached when Redis is absent.
	if cfg.Redis.Addr != "" {
		c, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.TTL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, running uncached: %v", err)
		} else {
			defer c.Close()
			f.SetCache(c)
			log.Printf("Response cache: %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Rate history store is optional in one-shot mode but the dashboard
	// needs it.
	var pgStore *storage.PostgresStore
	if cfg.Postgres.DBURL != "" {
		pgStore, err = storage.NewPostgresStore(ctx, cfg.Postgres.DBURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Postgres.DBURL))
	} else {
		log.Println("DATABASE_URL not set, rate history disabled")
	}

	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	rep := report.NewWriter(cfg.DataDir)
	rates := services.NewRateService(cfg, f, pgStore, sqliteStore, rep)
	rates.SetBrandFetcher(fetcher.NewBrandFetcher(clients.Scraping, bounds))

	if pgStore != nil {
		if err := rates.SyncRoster(ctx); err != nil {
			log.Fatalf("Failed to sync roster: %v", err)
		}
	}

	if *fetchNow {
		log.Println("Running fetch cycle...")
		if err := rates.RunAll(ctx); err != nil {
			log.Fatalf("Fetch failed: %v", err)
		}
		log.Println("Fetch complete!")
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, rates, sqliteStore)

	retentionWorker := workers.NewRetentionWorker(ar, sqliteStore, cfg.Retention.MaxArchiveAge, cfg.Retention.MaxLogAge)
	retentionWorker.SetLogger(func(level models.LogLevel, source, message string) {
		sqliteStore.Log(nil, level, message, source)
	})
	sched.SetRetentionWorker(retentionWorker)
	go retentionWorker.Run(ctx, 6*time.Hour)
	log.Println("Retention worker started")

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	dashboard := web.NewServer(cfg.Dashboard.Addr, pgStore, sqliteStore, rates)
	dashboard.Start()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := dashboard.Shutdown(shutdownCtx); err != nil {
		log.Printf("Dashboard shutdown error: %v", err)
	}

	log.Println("Goodbye!")
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
