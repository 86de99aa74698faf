// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("database.path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.Segmentation.Clusters != 3 {
		t.Errorf("segmentation.clusters = %d, want 3", cfg.Segmentation.Clusters)
	}
	if cfg.Churn.Trees != 100 {
		t.Errorf("churn.trees = %d, want 100", cfg.Churn.Trees)
	}
	if !cfg.Training.FitOnStartup {
		t.Error("training.fit_on_startup should default to true")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
  read_timeout: 5s
data:
  users: 80
churn:
  trees: 30
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090 from file", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Data.Users != 80 {
		t.Errorf("data.users = %d, want 80", cfg.Data.Users)
	}
	if cfg.Churn.Trees != 30 {
		t.Errorf("churn.trees = %d, want 30", cfg.Churn.Trees)
	}
	// Untouched sections keep defaults.
	if cfg.Scorer.DefaultK != 5 {
		t.Errorf("scorer.default_k = %d, want default 5", cfg.Scorer.DefaultK)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SHOPLENS_SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want env override 7070", cfg.Server.Port)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"inverted churn tiers", func(c *Config) { c.Churn.TierLow, c.Churn.TierHigh = 0.7, 0.3 }},
		{"default k above max", func(c *Config) { c.Scorer.DefaultK, c.Scorer.MaxK = 20, 10 }},
		{"fewer users than clusters", func(c *Config) { c.Data.Users = 2 }},
		{"test ratio of one", func(c *Config) { c.Churn.TestRatio = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid configuration")
			}
		})
	}
}
