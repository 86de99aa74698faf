// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package datagen synthesizes a demo population: behavioral profiles drawn
// from Poisson and Normal distributions, transactional profiles from
// Exponential and Poisson distributions with segment-dependent adjustments,
// and a fixed product catalog. Generation is fully deterministic under a
// fixed seed.
package datagen

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/shoplens/shoplens/internal/analytics"
)

// Config controls population synthesis.
type Config struct {
	// Users is the population size.
	Users int

	// Seed fixes all random draws.
	Seed uint64
}

// DefaultConfig returns the demo defaults.
func DefaultConfig() Config {
	return Config{Users: 50, Seed: 42}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Users <= 0 {
		c.Users = d.Users
	}
}

// segmentWeights is the draw distribution for transactional value tiers.
var segmentWeights = []struct {
	segment analytics.Segment
	weight  float64
}{
	{analytics.SegmentHighValue, 0.15},
	{analytics.SegmentMediumValue, 0.35},
	{analytics.SegmentLowValue, 0.35},
	{analytics.SegmentNewUser, 0.15},
}

// Generate synthesizes both feature tables for one population.
func Generate(cfg Config) (*analytics.BehaviorTable, *analytics.TransactionTable, error) {
	cfg.applyDefaults()
	src := rand.NewSource(cfg.Seed)
	rng := rand.New(src)

	events := distuv.Poisson{Lambda: 20, Src: src}
	views := distuv.Poisson{Lambda: 15, Src: src}
	clicks := distuv.Poisson{Lambda: 12, Src: src}
	carts := distuv.Poisson{Lambda: 3, Src: src}
	sessionTime := distuv.Normal{Mu: 300, Sigma: 100, Src: src}

	behavior := make([]analytics.BehaviorProfile, cfg.Users)
	for i := range behavior {
		b := analytics.BehaviorProfile{
			UserID:           fmt.Sprintf("U%03d", i+1),
			TotalEvents:      events.Rand(),
			PageViews:        views.Rand(),
			Clicks:           clicks.Rand(),
			AddToCart:        carts.Rand(),
			UniqueProducts:   float64(2 + rng.Intn(13)),
			TotalSessionTime: math.Max(0, sessionTime.Rand()),
		}
		b.Derive()
		behavior[i] = b
	}

	ltv := distuv.Exponential{Rate: 1.0 / 3000, Src: src}
	orders := distuv.Poisson{Lambda: 6, Src: src}
	newUserOrders := distuv.Poisson{Lambda: 1, Src: src}
	ticket := distuv.Normal{Mu: 600, Sigma: 200, Src: src}
	recency := distuv.Exponential{Rate: 1.0 / 25, Src: src}
	variability := distuv.Exponential{Rate: 1.0 / 150, Src: src}

	transactions := make([]analytics.TransactionProfile, cfg.Users)
	for i := range transactions {
		tr := analytics.TransactionProfile{
			UserID:                  fmt.Sprintf("U%03d", i+1),
			Segment:                 drawSegment(rng),
			LifetimeValue:           ltv.Rand(),
			OrderCount:              orders.Rand(),
			AvgTicket:               math.Max(0, ticket.Rand()),
			UniqueProductsPurchased: float64(1 + rng.Intn(11)),
			DaysSinceLastPurchase:   recency.Rand(),
			SpendVariability:        variability.Rand(),
		}

		// Segment adjustments: high-value users buy more, recently; new
		// users barely have a history yet.
		switch tr.Segment {
		case analytics.SegmentHighValue:
			tr.LifetimeValue *= 3
			tr.AvgTicket *= 1.5
			tr.DaysSinceLastPurchase *= 0.5
		case analytics.SegmentNewUser:
			tr.LifetimeValue *= 0.1
			tr.OrderCount = newUserOrders.Rand()
			tr.DaysSinceLastPurchase *= 2
		}
		transactions[i] = tr
	}

	bt, err := analytics.NewBehaviorTable(behavior)
	if err != nil {
		return nil, nil, fmt.Errorf("behavior table: %w", err)
	}
	tt, err := analytics.NewTransactionTable(transactions)
	if err != nil {
		return nil, nil, fmt.Errorf("transaction table: %w", err)
	}
	return bt, tt, nil
}

func drawSegment(rng *rand.Rand) analytics.Segment {
	target := rng.Float64()
	acc := 0.0
	for _, w := range segmentWeights {
		acc += w.weight
		if target < acc {
			return w.segment
		}
	}
	return segmentWeights[len(segmentWeights)-1].segment
}

// Catalog returns the demo product catalog. Prices deliberately span every
// scorer price threshold.
func Catalog() []analytics.Product {
	return []analytics.Product{
		{ID: "P001", Name: "Galaxy S24 Smartphone", Category: "smartphones", Price: 2999.99, Brand: "Samsung"},
		{ID: "P002", Name: "iPhone 15 Pro", Category: "smartphones", Price: 8999.99, Brand: "Apple"},
		{ID: "P003", Name: "Dell XPS 13 Notebook", Category: "notebooks", Price: 5999.99, Brand: "Dell"},
		{ID: "P004", Name: "iPad Air Tablet", Category: "tablets", Price: 3999.99, Brand: "Apple"},
		{ID: "P005", Name: "Xiaomi 13 Smartphone", Category: "smartphones", Price: 1999.99, Brand: "Xiaomi"},
		{ID: "P006", Name: "MacBook Air Notebook", Category: "notebooks", Price: 7999.99, Brand: "Apple"},
		{ID: "P007", Name: "Galaxy Tab Tablet", Category: "tablets", Price: 2499.99, Brand: "Samsung"},
		{ID: "P008", Name: "Pixel 8 Smartphone", Category: "smartphones", Price: 3499.99, Brand: "Google"},
		{ID: "P009", Name: "ThinkPad Notebook", Category: "notebooks", Price: 4999.99, Brand: "Lenovo"},
		{ID: "P010", Name: "Surface Tablet", Category: "tablets", Price: 5499.99, Brand: "Microsoft"},
	}
}
