// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package score implements the rule-based recommendation scorer: an additive
// cascade of behavioral, segment, archetype and catalog rules with
// human-readable reason tags, optional uniform jitter, and a final clamp to
// [0, 1].
package score

// Reason tags attached to a recommendation as rules fire.
const (
	ReasonActiveUser          = "active_user"
	ReasonHighConversion      = "high_conversion"
	ReasonPremiumSegment      = "premium_segment"
	ReasonAffordableProduct   = "affordable_product"
	ReasonNewUserFit          = "new_user_fit"
	ReasonPricierProduct      = "pricier_product"
	ReasonActiveConverted     = "cluster_active_converted"
	ReasonActiveLowConversion = "cluster_active_low_conv"
	ReasonPassive             = "cluster_passive"
	ReasonDiversifiedCustomer = "diversified_customer"
)

// Config holds every rule bonus and threshold. All values are additive score
// contributions except the thresholds, which are catalog prices.
type Config struct {
	// ActiveUserBonus fires when the user's total_events exceeds the
	// population mean.
	ActiveUserBonus float64

	// HighConversionBonus fires when the user's conversion_rate exceeds the
	// population mean.
	HighConversionBonus float64

	// PremiumPriceThreshold splits the high_value segment rule: products
	// strictly above it earn PremiumBonus, the rest AffordableBonus.
	PremiumPriceThreshold float64
	PremiumBonus          float64
	AffordableBonus       float64

	// NewUserPriceThreshold splits the new_user segment rule: products
	// strictly below it earn NewUserFitBonus, the rest PricierProductBonus.
	NewUserPriceThreshold float64
	NewUserFitBonus       float64
	PricierProductBonus   float64

	// ActiveConvertedBonus fires unconditionally for the active_converted
	// archetype.
	ActiveConvertedBonus float64

	// ActiveLowConvPriceThreshold gates the active_low_conversion archetype
	// bonus to products strictly below it.
	ActiveLowConvPriceThreshold float64
	ActiveLowConvBonus          float64

	// PassivePriceThreshold gates the passive archetype bonus to products
	// strictly below it.
	PassivePriceThreshold float64
	PassiveBonus          float64

	// CategoryAffinity maps product categories to their bonus; categories
	// absent from the map earn CategoryDefault. The category name itself is
	// the reason tag.
	CategoryAffinity map[string]float64
	CategoryDefault  float64

	// DiversifiedBonus fires when the user's unique_products_purchased
	// exceeds the population mean.
	DiversifiedBonus float64

	// JitterAmplitude is the half-width of the uniform noise added to each
	// score. Zero disables the draw entirely, which keeps scoring
	// deterministic.
	JitterAmplitude float64

	// DefaultK is the recommendation count when the caller does not specify
	// one. MaxK caps caller-supplied counts.
	DefaultK int
	MaxK     int

	// Seed fixes the jitter source.
	Seed int64
}

// DefaultConfig returns the contract defaults.
func DefaultConfig() Config {
	return Config{
		ActiveUserBonus:             0.20,
		HighConversionBonus:         0.15,
		PremiumPriceThreshold:       5000,
		PremiumBonus:                0.30,
		AffordableBonus:             0.10,
		NewUserPriceThreshold:       3000,
		NewUserFitBonus:             0.25,
		PricierProductBonus:         0.05,
		ActiveConvertedBonus:        0.20,
		ActiveLowConvPriceThreshold: 4000,
		ActiveLowConvBonus:          0.15,
		PassivePriceThreshold:       2500,
		PassiveBonus:                0.10,
		CategoryAffinity: map[string]float64{
			"smartphones": 0.10,
			"notebooks":   0.08,
			"tablets":     0.06,
		},
		CategoryDefault: 0.03,
		DefaultK:        5,
		MaxK:            50,
		JitterAmplitude: 0.05,
		Seed:            42,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.DefaultK <= 0 {
		c.DefaultK = d.DefaultK
	}
	if c.MaxK <= 0 {
		c.MaxK = d.MaxK
	}
	if c.CategoryAffinity == nil {
		c.CategoryAffinity = d.CategoryAffinity
	}
}
