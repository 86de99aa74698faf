// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package session

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/shoplens/shoplens/internal/analytics"
	"github.com/shoplens/shoplens/internal/analytics/churn"
	"github.com/shoplens/shoplens/internal/analytics/segment"
)

// highConversionRate is the cut above which a user counts as high-conversion
// in the overview.
const highConversionRate = 0.2

// UserView joins a user's behavioral and transactional profiles with the
// fitted model outputs.
type UserView struct {
	UserID           string              `json:"user_id"`
	Segment          analytics.Segment   `json:"segment"`
	Cluster          int                 `json:"cluster"`
	Archetype        analytics.Archetype `json:"archetype"`
	TotalEvents      float64             `json:"total_events"`
	ConversionRate   float64             `json:"conversion_rate"`
	LifetimeValue    float64             `json:"lifetime_value"`
	OrderCount       float64             `json:"order_count"`
	DaysSinceLast    float64             `json:"days_since_last_purchase"`
	ChurnProbability float64             `json:"churn_probability"`
	ChurnPredicted   bool                `json:"churn_predicted"`
	RiskTier         churn.RiskTier      `json:"risk_tier"`
}

// OverviewView is the dashboard headline summary.
type OverviewView struct {
	Users            int                       `json:"users"`
	Products         int                       `json:"products"`
	ModelVersion     int                       `json:"model_version"`
	FittedAt         time.Time                 `json:"fitted_at"`
	TotalEvents      float64                   `json:"total_events"`
	TotalRevenue     float64                   `json:"total_revenue"`
	MedianConversion float64                   `json:"median_conversion_rate"`
	HighConvUsers    int                       `json:"high_conversion_users"`
	ClusterSizes     map[string]int            `json:"cluster_sizes"`
	RiskTiers        map[string]int            `json:"risk_tiers"`
	ChurnAccuracy    float64                   `json:"churn_accuracy"`
	Inertia          float64                   `json:"inertia"`
	PopulationMeans  analytics.PopulationStats `json:"population_means"`
	ChurnedUsers     int                       `json:"churned_users"`
	MeanChurnRisk    float64                   `json:"mean_churn_risk"`
	SegmentBreakdown map[string]int            `json:"segment_breakdown"`
}

// ClustersView exposes the segmentation result.
type ClustersView struct {
	Inertia  float64                `json:"inertia"`
	Clusters []segment.ClusterStats `json:"clusters"`
}

// ChurnView exposes the churn estimator result.
type ChurnView struct {
	Report      churn.Report              `json:"report"`
	Importances []churn.FeatureImportance `json:"importances"`
	RiskTiers   map[string]int            `json:"risk_tiers"`
	TrainSize   int                       `json:"train_size"`
	TestSize    int                       `json:"test_size"`
	TopRisk     []UserView                `json:"top_risk"`
}

// StatusView reports fit state without requiring a completed fit.
type StatusView struct {
	Fitted       bool      `json:"fitted"`
	ModelVersion int       `json:"model_version"`
	FittedAt     time.Time `json:"fitted_at,omitempty"`
	Users        int       `json:"users"`
	Products     int       `json:"products"`
}

// Status is always available, fitted or not.
func (s *Session) Status() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusView{
		Fitted:       s.fitted,
		ModelVersion: s.version,
		FittedAt:     s.fitAt,
		Users:        s.behavior.Len(),
		Products:     len(s.catalog),
	}
}

// Overview builds the dashboard summary. Requires a completed fit.
func (s *Session) Overview() (OverviewView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fitted {
		return OverviewView{}, analytics.ErrNotFitted
	}

	v := OverviewView{
		Users:            s.behavior.Len(),
		Products:         len(s.catalog),
		ModelVersion:     s.version,
		FittedAt:         s.fitAt,
		ClusterSizes:     make(map[string]int),
		RiskTiers:        make(map[string]int),
		SegmentBreakdown: make(map[string]int),
		ChurnAccuracy:    s.churnM.Report.Accuracy,
		Inertia:          s.seg.Inertia,
		PopulationMeans:  s.stats,
	}
	for _, cs := range s.seg.Stats {
		v.ClusterSizes[cs.Archetype.String()] += cs.Size
	}
	sum := 0.0
	for _, p := range s.churnM.Probabilities {
		v.RiskTiers[string(s.churnM.TierFor(p))]++
		sum += p
	}
	if n := len(s.churnM.Probabilities); n > 0 {
		v.MeanChurnRisk = sum / float64(n)
	}
	for _, r := range s.transactions.Rows() {
		v.SegmentBreakdown[string(r.Segment)]++
		v.TotalRevenue += r.LifetimeValue
		if r.Churned() {
			v.ChurnedUsers++
		}
	}

	conv := make([]float64, 0, s.behavior.Len())
	for _, r := range s.behavior.Rows() {
		v.TotalEvents += r.TotalEvents
		conv = append(conv, r.ConversionRate)
		if r.ConversionRate > highConversionRate {
			v.HighConvUsers++
		}
	}
	if len(conv) > 0 {
		sort.Float64s(conv)
		v.MedianConversion = stat.Quantile(0.5, stat.Empirical, conv, nil)
	}
	return v, nil
}

// Clusters exposes the fitted segmentation. Requires a completed fit.
func (s *Session) Clusters() (ClustersView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fitted {
		return ClustersView{}, analytics.ErrNotFitted
	}
	clusters := make([]segment.ClusterStats, len(s.seg.Stats))
	copy(clusters, s.seg.Stats)
	return ClustersView{Inertia: s.seg.Inertia, Clusters: clusters}, nil
}

// ChurnAnalysis exposes the fitted churn estimator, including the highest
// risk users for operator triage. Requires a completed fit.
func (s *Session) ChurnAnalysis(topN int) (ChurnView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fitted {
		return ChurnView{}, analytics.ErrNotFitted
	}
	if topN <= 0 {
		topN = 10
	}

	v := ChurnView{
		Report:      s.churnM.Report,
		Importances: append([]churn.FeatureImportance(nil), s.churnM.Importances...),
		RiskTiers:   make(map[string]int),
		TrainSize:   s.churnM.TrainSize,
		TestSize:    s.churnM.TestSize,
	}
	for _, p := range s.churnM.Probabilities {
		v.RiskTiers[string(s.churnM.TierFor(p))]++
	}

	users := s.userViewsLocked()
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].ChurnProbability > users[j].ChurnProbability
	})
	if len(users) > topN {
		users = users[:topN]
	}
	v.TopRisk = users
	return v, nil
}

// Users returns joined user views in table order, optionally limited.
// Requires a completed fit.
func (s *Session) Users(limit int) ([]UserView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fitted {
		return nil, analytics.ErrNotFitted
	}
	users := s.userViewsLocked()
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// User returns the joined view for one user. Requires a completed fit.
func (s *Session) User(userID string) (UserView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fitted {
		return UserView{}, analytics.ErrNotFitted
	}
	row, ok := s.behavior.Lookup(userID)
	if !ok {
		return UserView{}, &analytics.UserNotFoundError{UserID: userID, Table: "behavior"}
	}
	if _, ok := s.transactions.Lookup(userID); !ok {
		return UserView{}, &analytics.UserNotFoundError{UserID: userID, Table: "transactions"}
	}
	return s.userViewLocked(row), nil
}

// userViewsLocked joins every behavior row that also has a transactional
// profile. Callers hold at least the read lock.
func (s *Session) userViewsLocked() []UserView {
	out := make([]UserView, 0, s.behavior.Len())
	for row := range s.behavior.Rows() {
		if _, ok := s.transactions.Lookup(s.behavior.At(row).UserID); !ok {
			continue
		}
		out = append(out, s.userViewLocked(row))
	}
	return out
}

func (s *Session) userViewLocked(row int) UserView {
	b := s.behavior.At(row)
	t, _ := s.transactions.Get(b.UserID)

	v := UserView{
		UserID:         b.UserID,
		Segment:        t.Segment,
		Cluster:        s.seg.Assignments[row],
		Archetype:      s.seg.ArchetypeFor(row),
		TotalEvents:    b.TotalEvents,
		ConversionRate: b.ConversionRate,
		LifetimeValue:  t.LifetimeValue,
		OrderCount:     t.OrderCount,
		DaysSinceLast:  t.DaysSinceLastPurchase,
	}
	if tRow, ok := s.transactions.Lookup(b.UserID); ok {
		v.ChurnProbability = s.churnM.Probabilities[tRow]
		v.ChurnPredicted = s.churnM.Predictions[tRow]
		v.RiskTier = s.churnM.TierFor(v.ChurnProbability)
	}
	return v
}
