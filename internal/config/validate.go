// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags plus the cross-field invariants tags cannot
// express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Churn.TierLow >= c.Churn.TierHigh {
		return fmt.Errorf("churn.tier_low (%v) must be below churn.tier_high (%v)",
			c.Churn.TierLow, c.Churn.TierHigh)
	}
	if c.Scorer.DefaultK > c.Scorer.MaxK {
		return fmt.Errorf("scorer.default_k (%d) must not exceed scorer.max_k (%d)",
			c.Scorer.DefaultK, c.Scorer.MaxK)
	}
	if c.Data.Users > 0 && c.Data.Users < c.Segmentation.Clusters {
		return fmt.Errorf("data.users (%d) must cover at least segmentation.clusters (%d)",
			c.Data.Users, c.Segmentation.Clusters)
	}
	if c.Training.RefitInterval < 0 {
		return fmt.Errorf("training.refit_interval must not be negative")
	}
	return nil
}
