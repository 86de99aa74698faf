// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Fitter is the training entry point of the analytics pipeline. Defined here
// so the service does not import the session package directly.
type Fitter interface {
	Fit(ctx context.Context) error
}

// TrainerConfig holds configuration for the trainer service.
type TrainerConfig struct {
	// FitOnStartup trains the pipeline as soon as the service starts.
	FitOnStartup bool

	// RefitInterval is how often to retrain. Zero or negative disables
	// periodic retraining; the service then only trains on startup and
	// waits for shutdown.
	RefitInterval time.Duration

	// FitTimeout bounds a single training run. Default: 5m.
	FitTimeout time.Duration
}

// TrainerService owns the training lifecycle of the analytics pipeline:
// an optional startup fit plus periodic refits.
type TrainerService struct {
	fitter Fitter
	config TrainerConfig
	logger zerolog.Logger
	name   string
}

// NewTrainerService creates a new trainer service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainerService(fitter Fitter, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	if cfg.FitTimeout <= 0 {
		cfg.FitTimeout = 5 * time.Minute
	}
	return &TrainerService{
		fitter: fitter,
		config: cfg,
		logger: logger.With().Str("service", "trainer").Logger(),
		name:   "trainer-service",
	}
}

// Serve implements the suture.Service interface.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("fit_on_startup", s.config.FitOnStartup).
		Dur("refit_interval", s.config.RefitInterval).
		Msg("trainer service starting")

	if s.config.FitOnStartup {
		if err := s.fit(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup training failed (will retry on schedule)")
		}
	}

	if s.config.RefitInterval <= 0 {
		s.logger.Info().Msg("periodic retraining disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trainer service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.fit(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled training failed")
			}
		}
	}
}

func (s *TrainerService) fit(ctx context.Context) error {
	fitCtx, cancel := context.WithTimeout(ctx, s.config.FitTimeout)
	defer cancel()

	start := time.Now()
	if err := s.fitter.Fit(fitCtx); err != nil {
		return err
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("pipeline training complete")
	return nil
}

// String returns the service name for logging.
func (s *TrainerService) String() string {
	return s.name
}
