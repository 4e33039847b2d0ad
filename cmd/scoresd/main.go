// Command scoresd is the Summit Scores data server. It keeps a local
// Postgres cache in sync with the conference API and serves it over HTTP.
//
// Usage:
//
//	scoresd
//	API_PORT=8080 scoresd

// @title Summit Scores Data API
// @version 1.0.0
// @description Sync, cache, and serve conference athletics data: schools, sports, teams, games, live results, news, and per-user favorites.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Summit Athletics
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/summitathletics/summit-data/internal/api"
	"github.com/summitathletics/summit-data/internal/cache"
	"github.com/summitathletics/summit-data/internal/config"
	"github.com/summitathletics/summit-data/internal/db"
	"github.com/summitathletics/summit-data/internal/favorites"
	"github.com/summitathletics/summit-data/internal/maintenance"
	"github.com/summitathletics/summit-data/internal/provider"
	"github.com/summitathletics/summit-data/internal/store"
	"github.com/summitathletics/summit-data/internal/sync"

	_ "github.com/summitathletics/summit-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Open the local store (runs schema migration)
	st, err := store.Open(ctx, pool.Pool, cfg.IsProduction(), logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}

	// Dedicated LISTEN connection feeding the live-query notifier
	go st.Listen(ctx, cfg.DatabaseURL, logger)

	// Conference API client, sync engine, favorites coordinator
	client := provider.NewClient(cfg.ConferenceBaseURL, cfg.ConferenceAPIKey, cfg.ConferenceRateRPM, logger)
	engine := sync.New(client, st, cfg.IncludeCancelled, logger)
	coordinator := favorites.New(client, st, logger)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start maintenance tickers (periodic sync, reconcile sweep, day change)
	go maintenance.Start(ctx, engine, coordinator, maintenance.Config{
		SyncInterval:      cfg.SyncInterval,
		ReconcileInterval: cfg.ReconcileInterval,
		DayChange:         true,
	}, logger)

	// Create router
	router := api.NewRouter(pool.Pool, st, engine, coordinator, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Summit Scores Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
