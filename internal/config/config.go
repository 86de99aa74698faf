// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package config loads and validates application configuration from three
// layers with increasing precedence: built-in defaults, an optional YAML
// file, and SHOPLENS_-prefixed environment variables.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Database     DatabaseConfig     `koanf:"database"`
	Data         DataConfig         `koanf:"data"`
	Segmentation SegmentationConfig `koanf:"segmentation"`
	Churn        ChurnConfig        `koanf:"churn"`
	Scorer       ScorerConfig       `koanf:"scorer"`
	Training     TrainingConfig     `koanf:"training"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins for browser clients. Empty allows
	// none; "*" allows all, demo default.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is the per-IP request budget per minute for the API.
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`

	// TrainInterval is the minimum spacing between accepted POST /train
	// requests.
	TrainInterval time.Duration `koanf:"train_interval"`
}

// LoggingConfig holds the zerolog settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is "json" for machine consumption or "console" for humans.
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DatabaseConfig holds the DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an ephemeral store.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory caps DuckDB's memory usage, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker thread count; 0 lets DuckDB decide.
	Threads int `koanf:"threads" validate:"gte=0"`
}

// DataConfig controls demo population synthesis.
type DataConfig struct {
	// Users is the synthesized population size.
	Users int `koanf:"users" validate:"gte=0"`

	// Seed fixes all population draws.
	Seed uint64 `koanf:"seed"`
}

// SegmentationConfig mirrors the clustering parameters.
type SegmentationConfig struct {
	Clusters      int     `koanf:"clusters" validate:"gte=1"`
	Inits         int     `koanf:"inits" validate:"gte=1"`
	MaxIterations int     `koanf:"max_iterations" validate:"gte=1"`
	Tolerance     float64 `koanf:"tolerance" validate:"gt=0"`
	Seed          int64   `koanf:"seed"`
}

// ChurnConfig mirrors the churn estimator parameters.
type ChurnConfig struct {
	Trees     int     `koanf:"trees" validate:"gte=1"`
	MaxDepth  int     `koanf:"max_depth" validate:"gte=1"`
	TestRatio float64 `koanf:"test_ratio" validate:"gt=0,lt=1"`
	Threshold float64 `koanf:"threshold" validate:"gt=0,lt=1"`
	TierLow   float64 `koanf:"tier_low" validate:"gt=0,lt=1"`
	TierHigh  float64 `koanf:"tier_high" validate:"gt=0,lt=1"`
	Seed      int64   `koanf:"seed"`
}

// ScorerConfig mirrors the recommendation scorer parameters. Rule bonuses
// keep their built-in defaults; only the operational knobs are exposed.
type ScorerConfig struct {
	JitterAmplitude float64 `koanf:"jitter_amplitude" validate:"gte=0,lte=1"`
	DefaultK        int     `koanf:"default_k" validate:"gte=1"`
	MaxK            int     `koanf:"max_k" validate:"gte=1"`
	Seed            int64   `koanf:"seed"`
}

// TrainingConfig controls model lifecycle.
type TrainingConfig struct {
	// FitOnStartup trains the pipeline before the server accepts traffic.
	FitOnStartup bool `koanf:"fit_on_startup"`

	// RefitInterval retrains periodically; zero disables.
	RefitInterval time.Duration `koanf:"refit_interval"`
}

// defaultConfig returns a Config with all demo defaults applied. These are
// layered first, then overridden by file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
			TrainInterval:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Data: DataConfig{
			Users: 50,
			Seed:  42,
		},
		Segmentation: SegmentationConfig{
			Clusters:      3,
			Inits:         10,
			MaxIterations: 300,
			Tolerance:     1e-4,
			Seed:          42,
		},
		Churn: ChurnConfig{
			Trees:     100,
			MaxDepth:  5,
			TestRatio: 0.3,
			Threshold: 0.5,
			TierLow:   0.3,
			TierHigh:  0.7,
			Seed:      42,
		},
		Scorer: ScorerConfig{
			JitterAmplitude: 0.05,
			DefaultK:        5,
			MaxK:            50,
			Seed:            42,
		},
		Training: TrainingConfig{
			FitOnStartup:  true,
			RefitInterval: 0,
		},
	}
}
