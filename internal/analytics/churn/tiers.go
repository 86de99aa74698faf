// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package churn

// RiskTier buckets a churn probability for presentation.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// TierFor maps a probability to a tier: low for p <= low, medium for
// low < p <= high, high above. Every probability lands in exactly one tier.
func TierFor(p, low, high float64) RiskTier {
	switch {
	case p <= low:
		return RiskLow
	case p <= high:
		return RiskMedium
	default:
		return RiskHigh
	}
}
