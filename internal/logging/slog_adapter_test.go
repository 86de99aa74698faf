// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	slogger := NewSlogLogger()
	slogger.Info("supervisor event",
		slog.String("service", "trainer"),
		slog.Int("restarts", 2),
		slog.Bool("healthy", true),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["message"] != "supervisor event" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["service"] != "trainer" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["restarts"] != float64(2) {
		t.Errorf("restarts = %v", entry["restarts"])
	}
	if entry["healthy"] != true {
		t.Errorf("healthy = %v", entry["healthy"])
	}
}

func TestSlogHandlerGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	slogger := NewSlogLogger().WithGroup("suture").With(slog.String("tree", "shoplens"))
	slogger.Warn("service backoff")

	if !strings.Contains(buf.String(), `"suture.tree":"shoplens"`) {
		t.Errorf("grouped key missing from %q", buf.String())
	}
}

func TestSlogHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	NewSlogLogger().Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info line emitted at error level: %q", buf.String())
	}
}
