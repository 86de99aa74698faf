// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package segment implements the behavioral segmentation engine: z-score
// standardization followed by seeded k-means over the behavioral feature
// table, plus the post-hoc archetype labeling step.
package segment

import (
	"context"
	"math"
	"math/rand"

	"github.com/shoplens/shoplens/internal/analytics"
)

// FeatureNames lists the behavioral features used for clustering, in column
// order.
var FeatureNames = []string{
	"total_events",
	"page_views",
	"clicks",
	"add_to_cart",
	"unique_products",
	"conversion_rate",
	"avg_time_per_event",
}

// Config controls the segmentation fit.
type Config struct {
	// Clusters is the number of partitions. The pipeline contract fixes it
	// at 3 but it remains a parameter.
	Clusters int

	// Inits is the number of random initializations; the lowest-inertia
	// converged run wins. Typical value: 10.
	Inits int

	// MaxIterations bounds each Lloyd run.
	MaxIterations int

	// Tolerance is the centroid shift below which a run counts as converged.
	Tolerance float64

	// Seed fixes the random source so assignments are reproducible.
	Seed int64
}

// DefaultConfig returns the contract defaults.
func DefaultConfig() Config {
	return Config{
		Clusters:      3,
		Inits:         10,
		MaxIterations: 300,
		Tolerance:     1e-4,
		Seed:          42,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Clusters <= 0 {
		c.Clusters = d.Clusters
	}
	if c.Inits <= 0 {
		c.Inits = d.Inits
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
}

// Model is the fitted segmentation result. Assignments align with the
// behavior table's row order.
type Model struct {
	// Scaler is the fitted standardization, reusable for new users.
	Scaler *StandardScaler

	// Centroids are the cluster centers in scaled feature space.
	Centroids [][]float64

	// Assignments maps each behavior row to its cluster index.
	Assignments []int

	// Inertia is the within-cluster sum of squared distances of the winning
	// run.
	Inertia float64

	// Labels maps cluster index to its derived archetype.
	Labels map[int]analytics.Archetype

	// Stats summarizes each cluster against the population.
	Stats []ClusterStats
}

// ArchetypeFor returns the archetype of the cluster the given behavior row
// belongs to.
func (m *Model) ArchetypeFor(row int) analytics.Archetype {
	return m.Labels[m.Assignments[row]]
}

// Fit clusters the behavioral table into cfg.Clusters partitions.
//
// It fails with analytics.InsufficientDataError when fewer users than
// clusters exist, analytics.InvalidFeatureError when a feature is non-finite
// after cleaning, and analytics.NonConvergenceError when no initialization
// converges within the iteration budget.
func Fit(ctx context.Context, table *analytics.BehaviorTable, cfg Config) (*Model, error) {
	cfg.applyDefaults()

	n := 0
	if table != nil {
		n = table.Len()
	}
	if n < cfg.Clusters {
		return nil, &analytics.InsufficientDataError{
			Op:     "segmentation",
			Detail: "need at least one user per cluster",
			Have:   n,
			Need:   cfg.Clusters,
		}
	}

	x, err := featureMatrix(table)
	if err != nil {
		return nil, err
	}

	scaler, err := FitScaler(x)
	if err != nil {
		return nil, err
	}
	scaled := scaler.Transform(x)

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic clustering, not cryptography

	best := lloydResult{inertia: math.Inf(1)}
	converged := false
	for i := 0; i < cfg.Inits; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := runLloyd(scaled, cfg, rng)
		if !res.converged {
			continue
		}
		converged = true
		if res.inertia < best.inertia {
			best = res
		}
	}
	if !converged {
		return nil, &analytics.NonConvergenceError{
			MaxIterations: cfg.MaxIterations,
			Inits:         cfg.Inits,
		}
	}

	labels, stats := labelClusters(table, best.assignments, cfg.Clusters)

	return &Model{
		Scaler:      scaler,
		Centroids:   best.centroids,
		Assignments: best.assignments,
		Inertia:     best.inertia,
		Labels:      labels,
		Stats:       stats,
	}, nil
}

// featureMatrix extracts the clustering features. NaN values are filled with
// 0; infinite values reject the column.
func featureMatrix(table *analytics.BehaviorTable) ([][]float64, error) {
	x := make([][]float64, table.Len())
	for i, r := range table.Rows() {
		row := []float64{
			r.TotalEvents,
			r.PageViews,
			r.Clicks,
			r.AddToCart,
			r.UniqueProducts,
			r.ConversionRate,
			r.AvgTimePerEvent,
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

type lloydResult struct {
	centroids   [][]float64
	assignments []int
	inertia     float64
	converged   bool
}

// runLloyd performs one k-means run: k-means++ seeding followed by Lloyd
// iterations until the total centroid shift drops below the tolerance.
func runLloyd(x [][]float64, cfg Config, rng *rand.Rand) lloydResult {
	k := cfg.Clusters
	centroids := seedPlusPlus(x, k, rng)
	assignments := make([]int, len(x))

	res := lloydResult{}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		// Assignment step
		for i, p := range x {
			assignments[i] = nearestCentroid(p, centroids)
		}

		// Update step
		next := updateCentroids(x, assignments, centroids)
		repairEmptyClusters(x, assignments, next)

		shift := 0.0
		for c := range next {
			shift += squaredDistance(centroids[c], next[c])
		}
		centroids = next

		if shift < cfg.Tolerance {
			res.converged = true
			break
		}
	}

	for i, p := range x {
		assignments[i] = nearestCentroid(p, centroids)
		res.inertia += squaredDistance(p, centroids[assignments[i]])
	}
	res.centroids = centroids
	res.assignments = assignments
	return res
}

// seedPlusPlus picks initial centroids with k-means++ weighting: the first
// uniformly, the rest proportional to squared distance from the nearest
// chosen center.
func seedPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneVec(x[rng.Intn(len(x))]))

	dist := make([]float64, len(x))
	for len(centroids) < k {
		total := 0.0
		for i, p := range x {
			d := math.Inf(1)
			for _, c := range centroids {
				if sd := squaredDistance(p, c); sd < d {
					d = sd
				}
			}
			dist[i] = d
			total += d
		}
		if total == 0 {
			// All remaining points coincide with a centroid; pick uniformly.
			centroids = append(centroids, cloneVec(x[rng.Intn(len(x))]))
			continue
		}
		target := rng.Float64() * total
		acc := 0.0
		pick := len(x) - 1
		for i, d := range dist {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, cloneVec(x[pick]))
	}
	return centroids
}

func updateCentroids(x [][]float64, assignments []int, prev [][]float64) [][]float64 {
	k := len(prev)
	cols := len(x[0])
	next := make([][]float64, k)
	counts := make([]int, k)
	for c := range next {
		next[c] = make([]float64, cols)
	}
	for i, p := range x {
		c := assignments[i]
		counts[c]++
		for j, v := range p {
			next[c][j] += v
		}
	}
	for c := range next {
		if counts[c] == 0 {
			// Keep the previous position; the repair step relocates it.
			copy(next[c], prev[c])
			continue
		}
		for j := range next[c] {
			next[c][j] /= float64(counts[c])
		}
	}
	return next
}

// repairEmptyClusters relocates each empty cluster's centroid to the point
// farthest from its current assignment, the standard degenerate-partition
// fix.
func repairEmptyClusters(x [][]float64, assignments []int, centroids [][]float64) {
	counts := make([]int, len(centroids))
	for _, c := range assignments {
		counts[c]++
	}
	for c, n := range counts {
		if n > 0 {
			continue
		}
		farthest, maxDist := 0, -1.0
		for i, p := range x {
			if counts[assignments[i]] <= 1 {
				continue
			}
			if d := squaredDistance(p, centroids[assignments[i]]); d > maxDist {
				maxDist = d
				farthest = i
			}
		}
		counts[assignments[farthest]]--
		assignments[farthest] = c
		counts[c] = 1
		copy(centroids[c], x[farthest])
	}
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
