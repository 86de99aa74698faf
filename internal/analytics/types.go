// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package analytics

import (
	"fmt"
	"math"
)

// ChurnDayThreshold is the recency cutoff, in days, beyond which a user is
// considered churned for training purposes.
const ChurnDayThreshold = 30

// RecencySentinelDays is the days_since_last_purchase value assigned to users
// with no purchase history at all.
const RecencySentinelDays = 365

// Segment classifies a user's transactional value tier.
type Segment string

const (
	// SegmentHighValue marks users with a large purchase history.
	SegmentHighValue Segment = "high_value"
	// SegmentMediumValue marks users with an average purchase history.
	SegmentMediumValue Segment = "medium_value"
	// SegmentLowValue marks users with a small purchase history.
	SegmentLowValue Segment = "low_value"
	// SegmentNewUser marks recently registered users with little history.
	SegmentNewUser Segment = "new_user"
)

// Valid reports whether s is one of the known segments.
func (s Segment) Valid() bool {
	switch s {
	case SegmentHighValue, SegmentMediumValue, SegmentLowValue, SegmentNewUser:
		return true
	default:
		return false
	}
}

// Archetype is the human-readable behavioral cluster label derived by
// comparing a cluster's mean metrics against the population mean. The
// cluster-index-to-archetype mapping is recomputed on every fit; it is not a
// property of the clustering algorithm itself.
type Archetype string

const (
	// ArchetypePassive marks the cluster with the lowest activity.
	ArchetypePassive Archetype = "passive"
	// ArchetypeActiveConverted marks the active cluster that converts.
	ArchetypeActiveConverted Archetype = "active_converted"
	// ArchetypeActiveLowConversion marks the active cluster that browses
	// without converting.
	ArchetypeActiveLowConversion Archetype = "active_low_conversion"
)

// String returns the archetype label.
func (a Archetype) String() string { return string(a) }

// BehaviorProfile aggregates a user's interaction metrics for one analytic
// session. ConversionRate and AvgTimePerEvent are derived via Derive and are
// guarded against division by zero.
type BehaviorProfile struct {
	// UserID is the stable user identifier shared across feature tables.
	UserID string `json:"user_id"`

	// TotalEvents is the total interaction event count.
	TotalEvents float64 `json:"total_events"`

	// PageViews is the number of product page views.
	PageViews float64 `json:"page_views"`

	// Clicks is the number of click events.
	Clicks float64 `json:"clicks"`

	// AddToCart is the number of add-to-cart events.
	AddToCart float64 `json:"add_to_cart"`

	// UniqueProducts is the cardinality of distinct products interacted with.
	UniqueProducts float64 `json:"unique_products"`

	// TotalSessionTime is the cumulative session time in seconds.
	TotalSessionTime float64 `json:"total_session_time"`

	// ConversionRate is add_to_cart / max(page_views, 1).
	ConversionRate float64 `json:"conversion_rate"`

	// AvgTimePerEvent is total_session_time / max(total_events, 1).
	AvgTimePerEvent float64 `json:"avg_time_per_event"`
}

// Derive computes the ratio features from the raw counters.
func (b *BehaviorProfile) Derive() {
	b.ConversionRate = b.AddToCart / math.Max(b.PageViews, 1)
	b.AvgTimePerEvent = b.TotalSessionTime / math.Max(b.TotalEvents, 1)
}

// TransactionProfile aggregates a user's purchase metrics for one analytic
// session.
type TransactionProfile struct {
	// UserID is the stable user identifier shared across feature tables.
	UserID string `json:"user_id"`

	// Segment is the transactional value tier.
	Segment Segment `json:"segment"`

	// LifetimeValue is the total purchase amount, non-negative.
	LifetimeValue float64 `json:"lifetime_value"`

	// OrderCount is the total number of orders placed.
	OrderCount float64 `json:"order_count"`

	// AvgTicket is the mean order amount.
	AvgTicket float64 `json:"avg_ticket"`

	// UniqueProductsPurchased is the cardinality of distinct products bought.
	UniqueProductsPurchased float64 `json:"unique_products_purchased"`

	// DaysSinceLastPurchase is the recency in days. Users without any
	// purchase carry RecencySentinelDays.
	DaysSinceLastPurchase float64 `json:"days_since_last_purchase"`

	// SpendVariability is a non-negative dispersion measure of order amounts.
	SpendVariability float64 `json:"spend_variability"`
}

// Churned is the ground-truth churn label used for training: true when the
// user has not purchased for more than ChurnDayThreshold days.
func (t *TransactionProfile) Churned() bool {
	return t.DaysSinceLastPurchase > ChurnDayThreshold
}

// Product is an immutable catalog entry.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Brand    string  `json:"brand"`
}

// Validate checks the catalog entry invariants.
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is empty")
	}
	if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("product %s: price %v is not a positive amount", p.ID, p.Price)
	}
	return nil
}

// Recommendation is one ranked (user, product) scoring result. It is
// recomputed on demand and never treated as an entity of record.
type Recommendation struct {
	// UserID is the user the recommendation was produced for.
	UserID string `json:"user_id"`

	// ProductID is the recommended catalog entry.
	ProductID string `json:"product_id"`

	// Score is the accumulated rule score, clamped to [0, 1].
	Score float64 `json:"score"`

	// Reasons lists the scoring rules that fired, in evaluation order.
	// Non-empty whenever any rule contributed to the score.
	Reasons []string `json:"reasons"`

	// Rank is the 1-based position within the user's ranked list.
	Rank int `json:"rank"`
}

// PopulationStats holds the population-level means the scorer compares
// individual users against. Computed once per fit over the full tables.
type PopulationStats struct {
	MeanTotalEvents             float64 `json:"mean_total_events"`
	MeanConversionRate          float64 `json:"mean_conversion_rate"`
	MeanUniqueProductsPurchased float64 `json:"mean_unique_products_purchased"`
}
