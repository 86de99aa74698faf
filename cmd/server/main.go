// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package main is the entry point for the Shoplens demo server.
//
// Shoplens is a self-contained predictive-analytics playground for an
// e-commerce catalog. On first start it synthesizes a reproducible user
// population, persists it in DuckDB, trains the behavioral segmentation and
// churn models, and serves a dashboard plus a JSON API on top of them.
//
// # Startup order
//
//  1. Configuration: defaults, optional config.yaml, SHOPLENS_ env vars (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB, file-backed or in-memory
//  4. Population: seeded on first run, loaded into in-memory feature tables
//  5. Supervisor tree: trainer + telemetry (analytics layer), HTTP server (API layer)
//
// # Configuration
//
// Everything has a demo-ready default; common overrides:
//
//	SHOPLENS_SERVER_PORT=9090
//	SHOPLENS_DATABASE_PATH=/data/shoplens.db
//	SHOPLENS_DATA_USERS=500
//	SHOPLENS_LOGGING_FORMAT=console
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the HTTP server drains
// in-flight requests within the configured timeout, then the remaining
// services stop and the database closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shoplens/shoplens/internal/analytics/session"
	"github.com/shoplens/shoplens/internal/api"
	"github.com/shoplens/shoplens/internal/config"
	"github.com/shoplens/shoplens/internal/datagen"
	"github.com/shoplens/shoplens/internal/logging"
	"github.com/shoplens/shoplens/internal/metrics"
	"github.com/shoplens/shoplens/internal/store"
	"github.com/shoplens/shoplens/internal/supervisor"
	"github.com/shoplens/shoplens/internal/supervisor/services"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Int("users", cfg.Data.Users).
		Msg("Starting Shoplens")
	metrics.SetAppInfo(version)

	st, err := store.New(store.Config{
		Path:      cfg.Database.Path,
		MaxMemory: cfg.Database.MaxMemory,
		Threads:   cfg.Database.Threads,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := st.SeedIfEmpty(ctx, datagen.Config{
		Users: cfg.Data.Users,
		Seed:  cfg.Data.Seed,
	}); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed demo population")
	}

	behavior, transactions, catalog, err := st.LoadTables(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load population")
	}
	logging.Info().
		Int("users", behavior.Len()).
		Int("products", len(catalog)).
		Msg("Population loaded")

	sess, err := session.New(behavior, transactions, catalog, sessionConfig(cfg), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build analytics session")
	}

	handler := api.NewHandler(sess, st, version, cfg.Server.TrainInterval, logging.Logger())
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// The supervisor logs through sutureslog, bridged onto zerolog.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAnalyticsService(services.NewTrainerService(sess, services.TrainerConfig{
		FitOnStartup:  cfg.Training.FitOnStartup,
		RefitInterval: cfg.Training.RefitInterval,
	}, logging.Logger()))
	tree.AddAnalyticsService(services.NewTelemetryService(time.Now(), 15*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// sessionConfig maps the flat server configuration onto the pipeline
// configuration, keeping built-in defaults for anything not exposed.
func sessionConfig(cfg *config.Config) session.Config {
	sc := session.DefaultConfig()

	sc.Segment.Clusters = cfg.Segmentation.Clusters
	sc.Segment.Inits = cfg.Segmentation.Inits
	sc.Segment.MaxIterations = cfg.Segmentation.MaxIterations
	sc.Segment.Tolerance = cfg.Segmentation.Tolerance
	sc.Segment.Seed = cfg.Segmentation.Seed

	sc.Churn.Trees = cfg.Churn.Trees
	sc.Churn.MaxDepth = cfg.Churn.MaxDepth
	sc.Churn.TestRatio = cfg.Churn.TestRatio
	sc.Churn.Threshold = cfg.Churn.Threshold
	sc.Churn.TierLow = cfg.Churn.TierLow
	sc.Churn.TierHigh = cfg.Churn.TierHigh
	sc.Churn.Seed = cfg.Churn.Seed

	sc.Score.JitterAmplitude = cfg.Scorer.JitterAmplitude
	sc.Score.DefaultK = cfg.Scorer.DefaultK
	sc.Score.MaxK = cfg.Scorer.MaxK
	sc.Score.Seed = cfg.Scorer.Seed

	return sc
}
