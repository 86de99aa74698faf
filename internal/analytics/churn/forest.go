// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package churn implements the churn estimator: a bagged ensemble of
// depth-bounded CART trees trained on transactional aggregates, with soft
// probability output, per-class evaluation on a held-out stratified split,
// and normalized feature importances.
package churn

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/shoplens/shoplens/internal/analytics"
)

// FeatureNames lists the model inputs, in column order.
var FeatureNames = []string{
	"lifetime_value",
	"order_count",
	"avg_ticket",
	"unique_products_purchased",
	"days_since_last_purchase",
	"spend_variability",
}

// Config controls the churn fit.
type Config struct {
	// Trees is the ensemble size. Typical value: 100.
	Trees int

	// MaxDepth bounds each tree. Typical value: 5.
	MaxDepth int

	// MinLeaf is the minimum samples a leaf may hold.
	MinLeaf int

	// TestRatio is the held-out share of the stratified split.
	TestRatio float64

	// Threshold converts probabilities into hard predictions.
	Threshold float64

	// TierLow and TierHigh are the risk-tier cut points: low <= TierLow,
	// medium <= TierHigh, high above.
	TierLow  float64
	TierHigh float64

	// Seed fixes the random source for bootstrap sampling, feature
	// subsampling and the split shuffle.
	Seed int64
}

// DefaultConfig returns the contract defaults.
func DefaultConfig() Config {
	return Config{
		Trees:     100,
		MaxDepth:  5,
		MinLeaf:   1,
		TestRatio: 0.3,
		Threshold: 0.5,
		TierLow:   0.3,
		TierHigh:  0.7,
		Seed:      42,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = d.MinLeaf
	}
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		c.TestRatio = d.TestRatio
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		c.Threshold = d.Threshold
	}
	if c.TierLow <= 0 {
		c.TierLow = d.TierLow
	}
	if c.TierHigh <= 0 {
		c.TierHigh = d.TierHigh
	}
}

// FeatureImportance pairs a feature with its normalized contribution to
// impurity reduction across the ensemble.
type FeatureImportance struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Model is the fitted churn estimator output. Probabilities and Predictions
// align with the transaction table's row order and cover the whole
// population, not just the test split.
type Model struct {
	// Probabilities holds the per-user churn probability in [0, 1].
	Probabilities []float64

	// Predictions holds the thresholded hard labels.
	Predictions []bool

	// Report evaluates the model on the held-out split.
	Report Report

	// Importances is sorted descending by weight.
	Importances []FeatureImportance

	// TrainSize and TestSize record the split sizes.
	TrainSize int
	TestSize  int

	// TierLow and TierHigh echo the configured tier cut points.
	TierLow  float64
	TierHigh float64

	forest *forest
}

// TierFor buckets a probability into a risk tier using the fitted cut
// points.
func (m *Model) TierFor(p float64) RiskTier {
	return TierFor(p, m.TierLow, m.TierHigh)
}

// Fit trains the estimator on the transactional table.
//
// The ground-truth label is TransactionProfile.Churned. Fails with
// analytics.InsufficientDataError when stratification would leave fewer than
// two examples of either class in the training split.
func Fit(ctx context.Context, table *analytics.TransactionTable, cfg Config) (*Model, error) {
	cfg.applyDefaults()

	if table == nil || table.Len() == 0 {
		return nil, &analytics.InsufficientDataError{
			Op:     "churn",
			Detail: "empty transactional table",
			Have:   0,
			Need:   minClassExamples * 2,
		}
	}

	x, err := featureMatrix(table)
	if err != nil {
		return nil, err
	}
	y := make([]bool, table.Len())
	for i, r := range table.Rows() {
		y[i] = r.Churned()
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic training, not cryptography
	trainIdx, testIdx, err := stratifiedSplit(y, cfg.TestRatio, rng)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := fitForest(ctx, x, y, trainIdx, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &Model{
		Probabilities: make([]float64, len(x)),
		Predictions:   make([]bool, len(x)),
		TrainSize:     len(trainIdx),
		TestSize:      len(testIdx),
		TierLow:       cfg.TierLow,
		TierHigh:      cfg.TierHigh,
		forest:        f,
	}
	for i, row := range x {
		p := f.proba(row)
		m.Probabilities[i] = p
		m.Predictions[i] = p >= cfg.Threshold
	}

	yTest := make([]bool, len(testIdx))
	predTest := make([]bool, len(testIdx))
	for i, idx := range testIdx {
		yTest[i] = y[idx]
		predTest[i] = m.Predictions[idx]
	}
	m.Report = buildReport(yTest, predTest)
	m.Importances = f.featureImportances()

	return m, nil
}

// Predict scores a single feature row with the fitted ensemble, for use on
// users added after the fit.
func (m *Model) Predict(row []float64) float64 {
	return m.forest.proba(row)
}

// featureMatrix extracts the model inputs. NaN values are filled with 0;
// infinite values reject the column.
func featureMatrix(table *analytics.TransactionTable) ([][]float64, error) {
	x := make([][]float64, table.Len())
	for i, r := range table.Rows() {
		row := []float64{
			r.LifetimeValue,
			r.OrderCount,
			r.AvgTicket,
			r.UniqueProductsPurchased,
			r.DaysSinceLastPurchase,
			r.SpendVariability,
		}
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = 0
				continue
			}
			if math.IsInf(v, 0) {
				return nil, &analytics.InvalidFeatureError{
					Feature: FeatureNames[j],
					Reason:  "non-finite value after cleaning",
				}
			}
		}
		x[i] = row
	}
	return x, nil
}

// forest is the bagged tree ensemble.
type forest struct {
	trees       []*decisionTree
	importances []float64
}

// fitForest trains cfg.Trees trees sequentially. Each tree gets its own
// seeded source derived from the base seed so results do not depend on
// training order elsewhere.
func fitForest(ctx context.Context, x [][]float64, y []bool, trainIdx []int, cfg Config) *forest {
	f := &forest{
		trees:       make([]*decisionTree, 0, cfg.Trees),
		importances: make([]float64, len(FeatureNames)),
	}
	mtry := int(math.Sqrt(float64(len(FeatureNames))))
	if mtry < 1 {
		mtry = 1
	}

	for t := 0; t < cfg.Trees; t++ {
		if ctx.Err() != nil {
			break
		}
		rng := rand.New(rand.NewSource(cfg.Seed + int64(t) + 1)) //nolint:gosec // deterministic training

		sample := make([]int, len(trainIdx))
		for i := range sample {
			sample[i] = trainIdx[rng.Intn(len(trainIdx))]
		}

		tree := growTree(x, y, sample, cfg, mtry, rng, f.importances)
		f.trees = append(f.trees, tree)
	}
	return f
}

// proba returns the mean positive-class fraction across all trees.
func (f *forest) proba(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.proba(row)
	}
	return sum / float64(len(f.trees))
}

// featureImportances normalizes the accumulated impurity decreases and
// returns them sorted descending.
func (f *forest) featureImportances() []FeatureImportance {
	total := 0.0
	for _, v := range f.importances {
		total += v
	}
	out := make([]FeatureImportance, len(FeatureNames))
	for i, name := range FeatureNames {
		w := 0.0
		if total > 0 {
			w = f.importances[i] / total
		}
		out[i] = FeatureImportance{Feature: name, Weight: w}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}
