// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shoplens/shoplens/internal/analytics"
	"github.com/shoplens/shoplens/internal/datagen"
)

func memoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Path: ":memory:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestSeedAndLoadRoundTrip(t *testing.T) {
	s := memoryStore(t)
	ctx := context.Background()

	if err := s.SeedIfEmpty(ctx, datagen.DefaultConfig()); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}

	bt, tt, products, err := s.LoadTables(ctx)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if bt.Len() != 50 || tt.Len() != 50 {
		t.Errorf("loaded %d/%d users, want 50/50", bt.Len(), tt.Len())
	}
	if len(products) != 10 {
		t.Errorf("loaded %d products, want 10", len(products))
	}

	// Both tables must cover the same user ids.
	for _, r := range bt.Rows() {
		if _, ok := tt.Lookup(r.UserID); !ok {
			t.Errorf("user %s missing from transaction table", r.UserID)
		}
	}

	// Seeding again must not duplicate the population.
	if err := s.SeedIfEmpty(ctx, datagen.DefaultConfig()); err != nil {
		t.Fatalf("second SeedIfEmpty: %v", err)
	}
	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 50 {
		t.Errorf("user count after reseed = %d, want 50", n)
	}
}

func TestSaveBehaviorReplaces(t *testing.T) {
	s := memoryStore(t)
	ctx := context.Background()

	first := []analytics.BehaviorProfile{{UserID: "u1", TotalEvents: 10, PageViews: 5}}
	if err := s.SaveBehavior(ctx, first); err != nil {
		t.Fatalf("SaveBehavior: %v", err)
	}

	second := []analytics.BehaviorProfile{
		{UserID: "u2", TotalEvents: 20, PageViews: 8},
		{UserID: "u3", TotalEvents: 30, PageViews: 9},
	}
	if err := s.SaveBehavior(ctx, second); err != nil {
		t.Fatalf("second SaveBehavior: %v", err)
	}

	rows, err := s.LoadBehavior(ctx)
	if err != nil {
		t.Fatalf("LoadBehavior: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows after replace, want 2", len(rows))
	}
	if rows[0].UserID != "u2" || rows[1].UserID != "u3" {
		t.Errorf("rows = %q, %q; want u2, u3", rows[0].UserID, rows[1].UserID)
	}
}

func TestTransactionsPreserveSegment(t *testing.T) {
	s := memoryStore(t)
	ctx := context.Background()

	in := []analytics.TransactionProfile{
		{UserID: "u1", Segment: analytics.SegmentHighValue, LifetimeValue: 9000, DaysSinceLastPurchase: 5},
		{UserID: "u2", Segment: analytics.SegmentNewUser, LifetimeValue: 100, DaysSinceLastPurchase: 90},
	}
	if err := s.SaveTransactions(ctx, in); err != nil {
		t.Fatalf("SaveTransactions: %v", err)
	}

	out, err := s.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].Segment != analytics.SegmentHighValue || out[1].Segment != analytics.SegmentNewUser {
		t.Errorf("segments = %q, %q", out[0].Segment, out[1].Segment)
	}
	if !out[1].Churned() {
		t.Error("u2 should be churned after round trip")
	}
}

func TestSaveRecommendationsAndHistory(t *testing.T) {
	s := memoryStore(t)
	ctx := context.Background()

	recs := []analytics.Recommendation{
		{UserID: "u1", ProductID: "P001", Score: 0.91, Rank: 1, Reasons: []string{"active_user", "smartphones"}},
		{UserID: "u1", ProductID: "P002", Score: 0.72, Rank: 2, Reasons: []string{"smartphones"}},
	}
	if err := s.SaveRecommendations(ctx, recs, 3); err != nil {
		t.Fatalf("SaveRecommendations: %v", err)
	}

	got, err := s.RecommendationHistory(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("RecommendationHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d history rows, want 2", len(got))
	}
	if got[0].ProductID != "P001" || got[0].Rank != 1 {
		t.Errorf("first history row = %+v", got[0])
	}
	if len(got[0].Reasons) != 2 || got[0].Reasons[0] != "active_user" {
		t.Errorf("reasons round trip = %v", got[0].Reasons)
	}

	empty, err := s.RecommendationHistory(ctx, "ghost", 10)
	if err != nil {
		t.Fatalf("RecommendationHistory(ghost): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ghost user has %d history rows, want 0", len(empty))
	}
}
