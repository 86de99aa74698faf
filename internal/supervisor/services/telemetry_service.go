// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package services

import (
	"context"
	"time"

	"github.com/shoplens/shoplens/internal/metrics"
)

// TelemetryService keeps the process-level gauges fresh. Currently that is
// just the uptime counter, updated on a fixed tick.
type TelemetryService struct {
	start    time.Time
	interval time.Duration
	name     string
}

// NewTelemetryService creates the gauge updater. An interval of zero or less
// defaults to 15s.
func NewTelemetryService(start time.Time, interval time.Duration) *TelemetryService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &TelemetryService{start: start, interval: interval, name: "telemetry"}
}

// Serve implements the suture.Service interface.
func (s *TelemetryService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	metrics.UpdateUptime(s.start)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.UpdateUptime(s.start)
		}
	}
}

// String returns the service name for logging.
func (s *TelemetryService) String() string {
	return s.name
}
