// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shoplens/shoplens/internal/analytics"
)

// fixturePopulation builds a small but realistic population: three distinct
// behavioral groups, all four segments, and both churn classes.
func fixturePopulation(t *testing.T) (*analytics.BehaviorTable, *analytics.TransactionTable, []analytics.Product) {
	t.Helper()

	var behavior []analytics.BehaviorProfile
	var transactions []analytics.TransactionProfile

	segments := []analytics.Segment{
		analytics.SegmentHighValue,
		analytics.SegmentMediumValue,
		analytics.SegmentLowValue,
		analytics.SegmentNewUser,
	}

	for i := 0; i < 36; i++ {
		id := fmt.Sprintf("user_%03d", i)
		b := analytics.BehaviorProfile{UserID: id}
		switch i % 3 {
		case 0: // passive
			b.TotalEvents = 5 + float64(i%7)
			b.PageViews = 4
			b.Clicks = 2
			b.AddToCart = 0
			b.UniqueProducts = 1
			b.TotalSessionTime = 120
		case 1: // active converting
			b.TotalEvents = 80 + float64(i%7)
			b.PageViews = 50
			b.Clicks = 30
			b.AddToCart = 25
			b.UniqueProducts = 9
			b.TotalSessionTime = 3600
		default: // active browsing
			b.TotalEvents = 75 + float64(i%7)
			b.PageViews = 60
			b.Clicks = 40
			b.AddToCart = 2
			b.UniqueProducts = 8
			b.TotalSessionTime = 3000
		}
		b.Derive()
		behavior = append(behavior, b)

		tr := analytics.TransactionProfile{
			UserID:  id,
			Segment: segments[i%len(segments)],
		}
		if i%2 == 0 { // churned half
			tr.LifetimeValue = 300 + float64(i)
			tr.OrderCount = 2
			tr.AvgTicket = 150
			tr.UniqueProductsPurchased = 2
			tr.DaysSinceLastPurchase = 60 + float64(i)
			tr.SpendVariability = 20
		} else {
			tr.LifetimeValue = 6000 + float64(i)*10
			tr.OrderCount = 12
			tr.AvgTicket = 500
			tr.UniqueProductsPurchased = 7
			tr.DaysSinceLastPurchase = 3 + float64(i%10)
			tr.SpendVariability = 120
		}
		transactions = append(transactions, tr)
	}

	bt, err := analytics.NewBehaviorTable(behavior)
	if err != nil {
		t.Fatalf("NewBehaviorTable: %v", err)
	}
	tt, err := analytics.NewTransactionTable(transactions)
	if err != nil {
		t.Fatalf("NewTransactionTable: %v", err)
	}

	catalog := []analytics.Product{
		{ID: "P001", Name: "Galaxy S24", Category: "smartphones", Price: 2999.99, Brand: "Samsung"},
		{ID: "P002", Name: "iPhone 15 Pro", Category: "smartphones", Price: 8999.99, Brand: "Apple"},
		{ID: "P003", Name: "Dell XPS 13", Category: "notebooks", Price: 5999.99, Brand: "Dell"},
		{ID: "P004", Name: "iPad Air", Category: "tablets", Price: 3999.99, Brand: "Apple"},
		{ID: "P005", Name: "Xiaomi 13", Category: "smartphones", Price: 1999.99, Brand: "Xiaomi"},
	}
	return bt, tt, catalog
}

func fittedSession(t *testing.T) *Session {
	t.Helper()
	bt, tt, catalog := fixturePopulation(t)
	cfg := DefaultConfig()
	cfg.Score.JitterAmplitude = 0

	s, err := New(bt, tt, catalog, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Fit(context.Background()); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return s
}

func TestFitAndStatus(t *testing.T) {
	bt, tt, catalog := fixturePopulation(t)
	s, err := New(bt, tt, catalog, DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	st := s.Status()
	if st.Fitted {
		t.Fatal("session reports fitted before Fit")
	}
	if st.Users != 36 || st.Products != 5 {
		t.Errorf("status = %d users / %d products, want 36/5", st.Users, st.Products)
	}

	if err := s.Fit(context.Background()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	st = s.Status()
	if !st.Fitted || st.ModelVersion != 1 || st.FittedAt.IsZero() {
		t.Errorf("status after fit = %+v", st)
	}

	if err := s.Fit(context.Background()); err != nil {
		t.Fatalf("second Fit: %v", err)
	}
	if got := s.Status().ModelVersion; got != 2 {
		t.Errorf("model version after refit = %d, want 2", got)
	}
}

func TestReadsBeforeFit(t *testing.T) {
	bt, tt, catalog := fixturePopulation(t)
	s, err := New(bt, tt, catalog, DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Overview(); !errors.Is(err, analytics.ErrNotFitted) {
		t.Errorf("Overview before fit: %v, want ErrNotFitted", err)
	}
	if _, err := s.Clusters(); !errors.Is(err, analytics.ErrNotFitted) {
		t.Errorf("Clusters before fit: %v, want ErrNotFitted", err)
	}
	if _, err := s.ChurnAnalysis(5); !errors.Is(err, analytics.ErrNotFitted) {
		t.Errorf("ChurnAnalysis before fit: %v, want ErrNotFitted", err)
	}
	if _, err := s.Users(0); !errors.Is(err, analytics.ErrNotFitted) {
		t.Errorf("Users before fit: %v, want ErrNotFitted", err)
	}
	if _, err := s.Recommend("user_000", 5); !errors.Is(err, analytics.ErrNotFitted) {
		t.Errorf("Recommend before fit: %v, want ErrNotFitted", err)
	}
}

func TestRecommend(t *testing.T) {
	s := fittedSession(t)

	recs, err := s.Recommend("user_001", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}
	for i, r := range recs {
		if r.UserID != "user_001" {
			t.Errorf("recs[%d].UserID = %q", i, r.UserID)
		}
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("recs[%d].Score = %v outside [0, 1]", i, r.Score)
		}
		if r.Rank != i+1 {
			t.Errorf("recs[%d].Rank = %d, want %d", i, r.Rank, i+1)
		}
		if len(r.Reasons) == 0 {
			t.Errorf("recs[%d] has no reasons", i)
		}
		if i > 0 && r.Score > recs[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestRecommendUnknownUser(t *testing.T) {
	s := fittedSession(t)
	_, err := s.Recommend("user_999", 5)
	var nf *analytics.UserNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Recommend unknown user: %v, want UserNotFoundError", err)
	}
	if nf.UserID != "user_999" {
		t.Errorf("error user = %q", nf.UserID)
	}
}

func TestOverview(t *testing.T) {
	s := fittedSession(t)

	v, err := s.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if v.Users != 36 || v.Products != 5 {
		t.Errorf("overview = %d users / %d products, want 36/5", v.Users, v.Products)
	}

	totalClustered := 0
	for _, n := range v.ClusterSizes {
		totalClustered += n
	}
	if totalClustered != 36 {
		t.Errorf("cluster sizes sum to %d, want 36", totalClustered)
	}

	totalTiered := 0
	for _, n := range v.RiskTiers {
		totalTiered += n
	}
	if totalTiered != 36 {
		t.Errorf("risk tiers sum to %d, want 36", totalTiered)
	}

	if v.ChurnedUsers != 18 {
		t.Errorf("churned users = %d, want 18", v.ChurnedUsers)
	}
	// Every third user converts 25/50 carts per view, far above the 20% cut.
	if v.HighConvUsers != 12 {
		t.Errorf("high conversion users = %d, want 12", v.HighConvUsers)
	}
	if v.TotalEvents <= 0 || v.TotalRevenue <= 0 {
		t.Errorf("totals = %v events / %v revenue, want positive", v.TotalEvents, v.TotalRevenue)
	}
	if v.MedianConversion < 0 || v.MedianConversion > 1 {
		t.Errorf("median conversion = %v outside [0, 1]", v.MedianConversion)
	}
	if v.MeanChurnRisk < 0 || v.MeanChurnRisk > 1 {
		t.Errorf("mean churn risk = %v outside [0, 1]", v.MeanChurnRisk)
	}
}

func TestClustersAndChurnViews(t *testing.T) {
	s := fittedSession(t)

	cv, err := s.Clusters()
	if err != nil {
		t.Fatalf("Clusters: %v", err)
	}
	if len(cv.Clusters) != 3 {
		t.Fatalf("got %d clusters, want 3", len(cv.Clusters))
	}

	ch, err := s.ChurnAnalysis(5)
	if err != nil {
		t.Fatalf("ChurnAnalysis: %v", err)
	}
	if len(ch.TopRisk) != 5 {
		t.Fatalf("got %d top-risk users, want 5", len(ch.TopRisk))
	}
	for i := 1; i < len(ch.TopRisk); i++ {
		if ch.TopRisk[i].ChurnProbability > ch.TopRisk[i-1].ChurnProbability {
			t.Errorf("top-risk list not sorted at %d", i)
		}
	}
	if len(ch.Importances) == 0 {
		t.Error("churn view has no importances")
	}
}

func TestUsersAndUser(t *testing.T) {
	s := fittedSession(t)

	users, err := s.Users(10)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 10 {
		t.Fatalf("got %d users, want 10", len(users))
	}

	u, err := s.User("user_002")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u.UserID != "user_002" {
		t.Errorf("user id = %q", u.UserID)
	}
	if u.Segment == "" || u.Archetype == "" {
		t.Errorf("user view missing segment or archetype: %+v", u)
	}
	if u.RiskTier == "" {
		t.Errorf("user view missing risk tier: %+v", u)
	}
}

func TestUserNotFound(t *testing.T) {
	s := fittedSession(t)
	if _, err := s.User("ghost"); !analytics.IsNotFound(err) {
		t.Fatalf("User(ghost): %v, want UserNotFoundError", err)
	}
}
