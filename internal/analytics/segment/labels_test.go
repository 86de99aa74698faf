// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package segment

import (
	"math"
	"testing"

	"github.com/shoplens/shoplens/internal/analytics"
)

func TestLabelClustersTieBreaks(t *testing.T) {
	// Clusters 0 and 1 share the lowest mean total_events; the lower index
	// must win the passive label. Cluster 2 has the highest conversion of the
	// remainder.
	rows := []analytics.BehaviorProfile{
		{UserID: "a", TotalEvents: 5, ConversionRate: 0.1},
		{UserID: "b", TotalEvents: 5, ConversionRate: 0.9},
		{UserID: "c", TotalEvents: 50, ConversionRate: 0.5},
	}
	table, err := analytics.NewBehaviorTable(rows)
	if err != nil {
		t.Fatalf("NewBehaviorTable: %v", err)
	}

	labels, stats := labelClusters(table, []int{0, 1, 2}, 3)

	if labels[0] != analytics.ArchetypePassive {
		t.Errorf("cluster 0 labeled %q, want passive on tie", labels[0])
	}
	if labels[1] != analytics.ArchetypeActiveConverted {
		t.Errorf("cluster 1 labeled %q, want active_converted", labels[1])
	}
	if labels[2] != analytics.ArchetypeActiveLowConversion {
		t.Errorf("cluster 2 labeled %q, want active_low_conversion", labels[2])
	}

	if len(stats) != 3 {
		t.Fatalf("got %d cluster stats, want 3", len(stats))
	}
	for c, s := range stats {
		if s.Cluster != c {
			t.Errorf("stats[%d].Cluster = %d", c, s.Cluster)
		}
		if s.Size != 1 {
			t.Errorf("stats[%d].Size = %d, want 1", c, s.Size)
		}
		if math.Abs(s.Share-1.0/3.0) > 1e-12 {
			t.Errorf("stats[%d].Share = %v, want 1/3", c, s.Share)
		}
		if s.Archetype != labels[c] {
			t.Errorf("stats[%d].Archetype = %q, want %q", c, s.Archetype, labels[c])
		}
	}
}
