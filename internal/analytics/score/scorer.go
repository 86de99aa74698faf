// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package score

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/shoplens/shoplens/internal/analytics"
)

// Scorer applies the additive rule cascade to user/product pairs. Safe for
// concurrent use; the jitter source is guarded by a mutex.
type Scorer struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a scorer with its own seeded jitter source.
func New(cfg Config) *Scorer {
	cfg.applyDefaults()
	return &Scorer{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // reproducible jitter, not cryptography
	}
}

// Config returns the effective configuration after defaults.
func (s *Scorer) Config() Config { return s.cfg }

// Score rates one product for one user. Rules fire independently and each
// appends its reason tag; the jittered sum is clamped to [0, 1].
func (s *Scorer) Score(
	behavior *analytics.BehaviorProfile,
	trans *analytics.TransactionProfile,
	archetype analytics.Archetype,
	product *analytics.Product,
	stats analytics.PopulationStats,
) (float64, []string) {
	score := 0.0
	var reasons []string

	if behavior.TotalEvents > stats.MeanTotalEvents {
		score += s.cfg.ActiveUserBonus
		reasons = append(reasons, ReasonActiveUser)
	}
	if behavior.ConversionRate > stats.MeanConversionRate {
		score += s.cfg.HighConversionBonus
		reasons = append(reasons, ReasonHighConversion)
	}

	switch trans.Segment {
	case analytics.SegmentHighValue:
		if product.Price > s.cfg.PremiumPriceThreshold {
			score += s.cfg.PremiumBonus
			reasons = append(reasons, ReasonPremiumSegment)
		} else {
			score += s.cfg.AffordableBonus
			reasons = append(reasons, ReasonAffordableProduct)
		}
	case analytics.SegmentNewUser:
		if product.Price < s.cfg.NewUserPriceThreshold {
			score += s.cfg.NewUserFitBonus
			reasons = append(reasons, ReasonNewUserFit)
		} else {
			score += s.cfg.PricierProductBonus
			reasons = append(reasons, ReasonPricierProduct)
		}
	}

	switch archetype {
	case analytics.ArchetypeActiveConverted:
		score += s.cfg.ActiveConvertedBonus
		reasons = append(reasons, ReasonActiveConverted)
	case analytics.ArchetypeActiveLowConversion:
		if product.Price < s.cfg.ActiveLowConvPriceThreshold {
			score += s.cfg.ActiveLowConvBonus
			reasons = append(reasons, ReasonActiveLowConversion)
		}
	case analytics.ArchetypePassive:
		if product.Price < s.cfg.PassivePriceThreshold {
			score += s.cfg.PassiveBonus
			reasons = append(reasons, ReasonPassive)
		}
	}

	if affinity, ok := s.cfg.CategoryAffinity[product.Category]; ok {
		score += affinity
	} else {
		score += s.cfg.CategoryDefault
	}
	reasons = append(reasons, product.Category)

	if trans.UniqueProductsPurchased > stats.MeanUniqueProductsPurchased {
		score += s.cfg.DiversifiedBonus
		reasons = append(reasons, ReasonDiversifiedCustomer)
	}

	score += s.jitter()

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, reasons
}

// jitter draws uniform noise in [-amplitude, +amplitude]. A zero amplitude
// skips the draw so the source state is untouched.
func (s *Scorer) jitter() float64 {
	if s.cfg.JitterAmplitude == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64()*2 - 1) * s.cfg.JitterAmplitude
}

// Recommend scores the whole catalog for one user and returns the top k,
// ranked from 1. Ties keep catalog order; k <= 0 falls back to the default
// and is capped at MaxK. An empty catalog yields an empty list.
func (s *Scorer) Recommend(
	behavior *analytics.BehaviorProfile,
	trans *analytics.TransactionProfile,
	archetype analytics.Archetype,
	catalog []analytics.Product,
	stats analytics.PopulationStats,
	k int,
) []analytics.Recommendation {
	if k <= 0 {
		k = s.cfg.DefaultK
	}
	if k > s.cfg.MaxK {
		k = s.cfg.MaxK
	}

	recs := make([]analytics.Recommendation, 0, len(catalog))
	for i := range catalog {
		p := &catalog[i]
		sc, reasons := s.Score(behavior, trans, archetype, p, stats)
		recs = append(recs, analytics.Recommendation{
			UserID:    behavior.UserID,
			ProductID: p.ID,
			Score:     sc,
			Reasons:   reasons,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > k {
		recs = recs[:k]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}
