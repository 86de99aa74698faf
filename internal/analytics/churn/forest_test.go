// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package churn

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shoplens/shoplens/internal/analytics"
)

// separableTable builds a population where churn is cleanly predictable from
// recency: churned users sit far past the threshold with low engagement,
// retained users well inside it with high engagement.
func separableTable(t *testing.T, n int) *analytics.TransactionTable {
	t.Helper()
	rng := rand.New(rand.NewSource(7)) //nolint:gosec // test data
	rows := make([]analytics.TransactionProfile, 0, n)
	for i := 0; i < n; i++ {
		churned := i%2 == 0
		p := analytics.TransactionProfile{
			UserID:  fmt.Sprintf("user_%03d", i),
			Segment: analytics.SegmentMediumValue,
		}
		if churned {
			p.LifetimeValue = 200 + rng.Float64()*100
			p.OrderCount = 1 + rng.Float64()*2
			p.AvgTicket = 150 + rng.Float64()*50
			p.UniqueProductsPurchased = 1 + rng.Float64()*2
			p.DaysSinceLastPurchase = 60 + rng.Float64()*60
			p.SpendVariability = 10 + rng.Float64()*10
		} else {
			p.LifetimeValue = 5000 + rng.Float64()*2000
			p.OrderCount = 10 + rng.Float64()*5
			p.AvgTicket = 500 + rng.Float64()*100
			p.UniqueProductsPurchased = 6 + rng.Float64()*3
			p.DaysSinceLastPurchase = 2 + rng.Float64()*10
			p.SpendVariability = 100 + rng.Float64()*50
		}
		rows = append(rows, p)
	}
	table, err := analytics.NewTransactionTable(rows)
	if err != nil {
		t.Fatalf("NewTransactionTable: %v", err)
	}
	return table
}

func TestFitSeparablePopulation(t *testing.T) {
	table := separableTable(t, 50)
	cfg := DefaultConfig()
	cfg.Trees = 25

	m, err := Fit(context.Background(), table, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if got := len(m.Probabilities); got != table.Len() {
		t.Fatalf("probabilities cover %d users, want %d", got, table.Len())
	}
	if m.TrainSize+m.TestSize != table.Len() {
		t.Errorf("split sizes %d+%d do not cover %d rows", m.TrainSize, m.TestSize, table.Len())
	}

	for i, p := range m.Probabilities {
		if p < 0 || p > 1 {
			t.Errorf("probability[%d] = %v outside [0, 1]", i, p)
		}
	}

	// On cleanly separable data the ensemble should recover the labels for
	// nearly every user.
	correct := 0
	for i, r := range table.Rows() {
		if m.Predictions[i] == r.Churned() {
			correct++
		}
	}
	if ratio := float64(correct) / float64(table.Len()); ratio < 0.9 {
		t.Errorf("population accuracy = %.2f, want >= 0.9", ratio)
	}

	if m.Report.Accuracy < 0.8 {
		t.Errorf("held-out accuracy = %.2f, want >= 0.8", m.Report.Accuracy)
	}
}

func TestFitDeterministic(t *testing.T) {
	table := separableTable(t, 40)
	cfg := DefaultConfig()
	cfg.Trees = 15

	a, err := Fit(context.Background(), table, cfg)
	if err != nil {
		t.Fatalf("first Fit: %v", err)
	}
	b, err := Fit(context.Background(), table, cfg)
	if err != nil {
		t.Fatalf("second Fit: %v", err)
	}

	for i := range a.Probabilities {
		if a.Probabilities[i] != b.Probabilities[i] {
			t.Fatalf("probability[%d] differs between identical fits: %v vs %v",
				i, a.Probabilities[i], b.Probabilities[i])
		}
	}
}

func TestFitImportancesNormalized(t *testing.T) {
	table := separableTable(t, 40)
	cfg := DefaultConfig()
	cfg.Trees = 15

	m, err := Fit(context.Background(), table, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if len(m.Importances) != len(FeatureNames) {
		t.Fatalf("got %d importances, want %d", len(m.Importances), len(FeatureNames))
	}
	sum := 0.0
	for i, imp := range m.Importances {
		if imp.Weight < 0 {
			t.Errorf("importance %q negative: %v", imp.Feature, imp.Weight)
		}
		if i > 0 && imp.Weight > m.Importances[i-1].Weight {
			t.Errorf("importances not sorted descending at %d", i)
		}
		sum += imp.Weight
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("importances sum = %v, want 1", sum)
	}
}

func TestFitSingleClass(t *testing.T) {
	rows := make([]analytics.TransactionProfile, 10)
	for i := range rows {
		rows[i] = analytics.TransactionProfile{
			UserID:                fmt.Sprintf("user_%02d", i),
			Segment:               analytics.SegmentLowValue,
			LifetimeValue:         100,
			OrderCount:            2,
			DaysSinceLastPurchase: 90, // every user churned
		}
	}
	table, err := analytics.NewTransactionTable(rows)
	if err != nil {
		t.Fatalf("NewTransactionTable: %v", err)
	}

	_, err = Fit(context.Background(), table, DefaultConfig())
	var insufficient *analytics.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Fit on single-class data: got %v, want InsufficientDataError", err)
	}
}

func TestFitEmptyTable(t *testing.T) {
	table, err := analytics.NewTransactionTable(nil)
	if err != nil {
		t.Fatalf("NewTransactionTable: %v", err)
	}
	if _, err := Fit(context.Background(), table, DefaultConfig()); !analytics.IsInsufficientData(err) {
		t.Fatalf("Fit on empty table: got %v, want InsufficientDataError", err)
	}
}

func TestFitCancelled(t *testing.T) {
	table := separableTable(t, 40)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fit(ctx, table, DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fit with cancelled context: got %v, want context.Canceled", err)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want RiskTier
	}{
		{"zero", 0, RiskLow},
		{"at low cut", 0.3, RiskLow},
		{"just above low cut", 0.300001, RiskMedium},
		{"mid", 0.5, RiskMedium},
		{"at high cut", 0.7, RiskMedium},
		{"just above high cut", 0.700001, RiskHigh},
		{"one", 1, RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFor(tt.p, 0.3, 0.7); got != tt.want {
				t.Errorf("TierFor(%v) = %q, want %q", tt.p, got, tt.want)
			}
		})
	}
}
