// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package segment

import (
	"github.com/shoplens/shoplens/internal/analytics"
)

// ClusterStats summarizes one cluster against the fit population.
type ClusterStats struct {
	// Cluster is the cluster index.
	Cluster int `json:"cluster"`

	// Archetype is the derived label.
	Archetype analytics.Archetype `json:"archetype"`

	// Size is the number of users assigned.
	Size int `json:"size"`

	// Share is Size as a fraction of the fit population.
	Share float64 `json:"share"`

	// MeanTotalEvents is the cluster mean of total_events.
	MeanTotalEvents float64 `json:"mean_total_events"`

	// MeanConversionRate is the cluster mean of conversion_rate.
	MeanConversionRate float64 `json:"mean_conversion_rate"`

	// MeanUniqueProducts is the cluster mean of unique_products.
	MeanUniqueProducts float64 `json:"mean_unique_products"`

	// MeanTimePerEvent is the cluster mean of avg_time_per_event.
	MeanTimePerEvent float64 `json:"mean_time_per_event"`
}

// labelClusters derives the archetype for each cluster by comparing cluster
// means against the population. The mapping is recomputed on every fit:
//
//   - Passive: the cluster with the lowest mean total_events. Ties break by
//     ascending cluster index.
//   - Active-Converted: of the remaining clusters, the one with the highest
//     mean conversion_rate, ties again by ascending index.
//   - Active-Low-Conversion: every other cluster.
func labelClusters(table *analytics.BehaviorTable, assignments []int, k int) (map[int]analytics.Archetype, []ClusterStats) {
	stats := make([]ClusterStats, k)
	for c := range stats {
		stats[c].Cluster = c
	}
	for i, c := range assignments {
		r := table.At(i)
		stats[c].Size++
		stats[c].MeanTotalEvents += r.TotalEvents
		stats[c].MeanConversionRate += r.ConversionRate
		stats[c].MeanUniqueProducts += r.UniqueProducts
		stats[c].MeanTimePerEvent += r.AvgTimePerEvent
	}
	for c := range stats {
		if stats[c].Size == 0 {
			continue
		}
		n := float64(stats[c].Size)
		if total := table.Len(); total > 0 {
			stats[c].Share = n / float64(total)
		}
		stats[c].MeanTotalEvents /= n
		stats[c].MeanConversionRate /= n
		stats[c].MeanUniqueProducts /= n
		stats[c].MeanTimePerEvent /= n
	}

	labels := make(map[int]analytics.Archetype, k)

	passive := 0
	for c := 1; c < k; c++ {
		if stats[c].MeanTotalEvents < stats[passive].MeanTotalEvents {
			passive = c
		}
	}
	labels[passive] = analytics.ArchetypePassive

	converted := -1
	for c := 0; c < k; c++ {
		if c == passive {
			continue
		}
		if converted == -1 || stats[c].MeanConversionRate > stats[converted].MeanConversionRate {
			converted = c
		}
	}
	if converted >= 0 {
		labels[converted] = analytics.ArchetypeActiveConverted
	}

	for c := 0; c < k; c++ {
		if _, done := labels[c]; !done {
			labels[c] = analytics.ArchetypeActiveLowConversion
		}
	}

	for c := range stats {
		stats[c].Archetype = labels[c]
	}
	return labels, stats
}
