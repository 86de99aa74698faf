// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package store persists the demo population and scoring results in DuckDB.
// The database is the system of record between restarts; the analytics core
// only ever sees the in-memory tables loaded from here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/shoplens/shoplens/internal/metrics"
)

// Config holds the database connection settings.
type Config struct {
	// Path is the database file, or ":memory:" for an ephemeral store.
	Path string `koanf:"path" json:"path"`

	// MaxMemory caps DuckDB's memory usage, e.g. "512MB".
	MaxMemory string `koanf:"max_memory" json:"max_memory"`

	// Threads is the DuckDB worker thread count; 0 lets DuckDB decide.
	Threads int `koanf:"threads" json:"threads"`
}

// DefaultConfig returns an in-memory store suitable for the demo.
func DefaultConfig() Config {
	return Config{Path: ":memory:", MaxMemory: "512MB"}
}

// Store wraps the DuckDB connection and provides data access methods.
type Store struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// New opens the database and initializes the schema.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}

	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	dsn := cfg.Path + "?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false"
	if cfg.MaxMemory != "" {
		dsn += "&max_memory=" + cfg.MaxMemory
	}
	if cfg.Threads > 0 {
		dsn += fmt.Sprintf("&threads=%d", cfg.Threads)
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		conn:   conn,
		logger: logger.With().Str("component", "store").Logger(),
	}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	s.logger.Info().Str("path", cfg.Path).Msg("database opened")
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping verifies connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_behavior (
			user_id            VARCHAR PRIMARY KEY,
			total_events       DOUBLE NOT NULL,
			page_views         DOUBLE NOT NULL,
			clicks             DOUBLE NOT NULL,
			add_to_cart        DOUBLE NOT NULL,
			unique_products    DOUBLE NOT NULL,
			total_session_time DOUBLE NOT NULL,
			conversion_rate    DOUBLE NOT NULL,
			avg_time_per_event DOUBLE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_transactions (
			user_id                   VARCHAR PRIMARY KEY,
			segment                   VARCHAR NOT NULL,
			lifetime_value            DOUBLE NOT NULL,
			order_count               DOUBLE NOT NULL,
			avg_ticket                DOUBLE NOT NULL,
			unique_products_purchased DOUBLE NOT NULL,
			days_since_last_purchase  DOUBLE NOT NULL,
			spend_variability         DOUBLE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id       VARCHAR PRIMARY KEY,
			name     VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			price    DOUBLE NOT NULL,
			brand    VARCHAR NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS recommendations_seq`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			id            BIGINT PRIMARY KEY DEFAULT nextval('recommendations_seq'),
			user_id       VARCHAR NOT NULL,
			product_id    VARCHAR NOT NULL,
			score         DOUBLE NOT NULL,
			rank          INTEGER NOT NULL,
			reasons       VARCHAR NOT NULL,
			model_version INTEGER NOT NULL,
			created_at    TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// CountUsers reports how many behavioral profiles are stored.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	start := time.Now()
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_behavior`).Scan(&n)
	metrics.RecordDBQuery("select", "user_behavior", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
