// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package session owns the full analytic state for one user population: the
// two feature tables, the product catalog, and every fitted model. A single
// RWMutex serializes training against reads; Fit takes the write lock, all
// query paths take the read lock.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoplens/shoplens/internal/analytics"
	"github.com/shoplens/shoplens/internal/analytics/churn"
	"github.com/shoplens/shoplens/internal/analytics/score"
	"github.com/shoplens/shoplens/internal/analytics/segment"
	"github.com/shoplens/shoplens/internal/metrics"
)

// Config bundles the estimator and scorer configurations.
type Config struct {
	Segment segment.Config
	Churn   churn.Config
	Score   score.Config
}

// DefaultConfig returns the contract defaults for the whole pipeline.
func DefaultConfig() Config {
	return Config{
		Segment: segment.DefaultConfig(),
		Churn:   churn.DefaultConfig(),
		Score:   score.DefaultConfig(),
	}
}

// Session is the concurrency boundary of the analytics core. All exported
// methods are safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	trainMu sync.Mutex // serializes Fit calls without blocking readers

	behavior     *analytics.BehaviorTable
	transactions *analytics.TransactionTable
	catalog      []analytics.Product

	cfg    Config
	scorer *score.Scorer
	logger zerolog.Logger

	seg     *segment.Model
	churnM  *churn.Model
	stats   analytics.PopulationStats
	fitted  bool
	version int
	fitAt   time.Time
}

// New builds an unfitted session over the given population and catalog.
// Catalog entries are validated up front; a bad entry rejects the whole
// session rather than skewing scores later.
func New(
	behavior *analytics.BehaviorTable,
	transactions *analytics.TransactionTable,
	catalog []analytics.Product,
	cfg Config,
	logger zerolog.Logger,
) (*Session, error) {
	for i, p := range catalog {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}
	return &Session{
		behavior:     behavior,
		transactions: transactions,
		catalog:      catalog,
		cfg:          cfg,
		scorer:       score.New(cfg.Score),
		logger:       logger.With().Str("component", "session").Logger(),
	}, nil
}

// Fit trains segmentation and churn in sequence and atomically swaps the
// fitted state. A failed fit leaves any previously fitted models serving.
func (s *Session) Fit(ctx context.Context) error {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	start := time.Now()

	segStart := time.Now()
	segModel, err := segment.Fit(ctx, s.behavior, s.cfg.Segment)
	metrics.RecordFit("segmentation", time.Since(segStart), err)
	if err != nil {
		s.logger.Error().Err(err).Msg("segmentation fit failed")
		return fmt.Errorf("segmentation fit: %w", err)
	}

	churnStart := time.Now()
	churnModel, err := churn.Fit(ctx, s.transactions, s.cfg.Churn)
	metrics.RecordFit("churn", time.Since(churnStart), err)
	if err != nil {
		s.logger.Error().Err(err).Msg("churn fit failed")
		return fmt.Errorf("churn fit: %w", err)
	}

	stats := analytics.ComputePopulationStats(s.behavior, s.transactions)

	s.mu.Lock()
	s.seg = segModel
	s.churnM = churnModel
	s.stats = stats
	s.fitted = true
	s.version++
	s.fitAt = time.Now()
	version := s.version
	s.mu.Unlock()

	s.publishModelGauges(segModel, churnModel, version)
	metrics.RecordFit("pipeline", time.Since(start), nil)

	s.logger.Info().
		Int("model_version", version).
		Float64("inertia", segModel.Inertia).
		Float64("churn_accuracy", churnModel.Report.Accuracy).
		Dur("duration", time.Since(start)).
		Msg("analytics pipeline fitted")
	return nil
}

func (s *Session) publishModelGauges(segModel *segment.Model, churnModel *churn.Model, version int) {
	metrics.ModelVersion.Set(float64(version))
	for _, cs := range segModel.Stats {
		metrics.ClusterSize.WithLabelValues(cs.Archetype.String()).Set(float64(cs.Size))
	}
	tiers := map[churn.RiskTier]int{}
	for _, p := range churnModel.Probabilities {
		tiers[churnModel.TierFor(p)]++
	}
	for _, tier := range []churn.RiskTier{churn.RiskLow, churn.RiskMedium, churn.RiskHigh} {
		metrics.ChurnRiskUsers.WithLabelValues(string(tier)).Set(float64(tiers[tier]))
	}
}

// Recommend scores the catalog for one user and returns the top k entries.
// Requires a completed fit; users must exist in both feature tables.
func (s *Session) Recommend(userID string, k int) ([]analytics.Recommendation, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.fitted {
		metrics.RecommendationRequests.WithLabelValues("not_fitted").Inc()
		return nil, analytics.ErrNotFitted
	}

	row, ok := s.behavior.Lookup(userID)
	if !ok {
		metrics.RecommendationRequests.WithLabelValues("not_found").Inc()
		return nil, &analytics.UserNotFoundError{UserID: userID, Table: "behavior"}
	}
	trans, ok := s.transactions.Get(userID)
	if !ok {
		metrics.RecommendationRequests.WithLabelValues("not_found").Inc()
		return nil, &analytics.UserNotFoundError{UserID: userID, Table: "transactions"}
	}

	recs := s.scorer.Recommend(
		s.behavior.At(row),
		trans,
		s.seg.ArchetypeFor(row),
		s.catalog,
		s.stats,
		k,
	)

	metrics.RecommendationRequests.WithLabelValues("success").Inc()
	metrics.RecommendationLatency.Observe(time.Since(start).Seconds())
	return recs, nil
}

// Products returns the catalog in its canonical order.
func (s *Session) Products() []analytics.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]analytics.Product, len(s.catalog))
	copy(out, s.catalog)
	return out
}
