// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// BehaviorTable is the per-user behavioral feature table. Row order is fixed
// at construction and shared with the estimator outputs.
type BehaviorTable struct {
	rows  []BehaviorProfile
	index map[string]int
}

// NewBehaviorTable builds a table from profiles, rejecting duplicate user ids.
func NewBehaviorTable(rows []BehaviorProfile) (*BehaviorTable, error) {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		if r.UserID == "" {
			return nil, fmt.Errorf("behavior row %d: empty user id", i)
		}
		if _, dup := index[r.UserID]; dup {
			return nil, fmt.Errorf("behavior table: duplicate user id %q", r.UserID)
		}
		index[r.UserID] = i
	}
	return &BehaviorTable{rows: rows, index: index}, nil
}

// Len returns the number of users in the table.
func (t *BehaviorTable) Len() int { return len(t.rows) }

// Rows returns the backing row slice in canonical order.
func (t *BehaviorTable) Rows() []BehaviorProfile { return t.rows }

// At returns the row at position i.
func (t *BehaviorTable) At(i int) *BehaviorProfile { return &t.rows[i] }

// Lookup returns the row index for a user id.
func (t *BehaviorTable) Lookup(userID string) (int, bool) {
	i, ok := t.index[userID]
	return i, ok
}

// Get returns the profile for a user id.
func (t *BehaviorTable) Get(userID string) (*BehaviorProfile, bool) {
	i, ok := t.index[userID]
	if !ok {
		return nil, false
	}
	return &t.rows[i], true
}

// TransactionTable is the per-user transactional feature table.
type TransactionTable struct {
	rows  []TransactionProfile
	index map[string]int
}

// NewTransactionTable builds a table from profiles, rejecting duplicate user
// ids and unknown segments.
func NewTransactionTable(rows []TransactionProfile) (*TransactionTable, error) {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		if r.UserID == "" {
			return nil, fmt.Errorf("transaction row %d: empty user id", i)
		}
		if !r.Segment.Valid() {
			return nil, fmt.Errorf("transaction row %d: unknown segment %q", i, r.Segment)
		}
		if _, dup := index[r.UserID]; dup {
			return nil, fmt.Errorf("transaction table: duplicate user id %q", r.UserID)
		}
		index[r.UserID] = i
	}
	return &TransactionTable{rows: rows, index: index}, nil
}

// Len returns the number of users in the table.
func (t *TransactionTable) Len() int { return len(t.rows) }

// Rows returns the backing row slice in canonical order.
func (t *TransactionTable) Rows() []TransactionProfile { return t.rows }

// At returns the row at position i.
func (t *TransactionTable) At(i int) *TransactionProfile { return &t.rows[i] }

// Lookup returns the row index for a user id.
func (t *TransactionTable) Lookup(userID string) (int, bool) {
	i, ok := t.index[userID]
	return i, ok
}

// Get returns the profile for a user id.
func (t *TransactionTable) Get(userID string) (*TransactionProfile, bool) {
	i, ok := t.index[userID]
	if !ok {
		return nil, false
	}
	return &t.rows[i], true
}

// ComputePopulationStats derives the population means the scorer compares
// against. Either table may be empty; missing populations yield zero means.
func ComputePopulationStats(behavior *BehaviorTable, transactions *TransactionTable) PopulationStats {
	var s PopulationStats
	if behavior != nil && behavior.Len() > 0 {
		events := make([]float64, behavior.Len())
		conv := make([]float64, behavior.Len())
		for i, r := range behavior.Rows() {
			events[i] = r.TotalEvents
			conv[i] = r.ConversionRate
		}
		s.MeanTotalEvents = stat.Mean(events, nil)
		s.MeanConversionRate = stat.Mean(conv, nil)
	}
	if transactions != nil && transactions.Len() > 0 {
		purchased := make([]float64, transactions.Len())
		for i, r := range transactions.Rows() {
			purchased[i] = r.UniqueProductsPurchased
		}
		s.MeanUniqueProductsPurchased = stat.Mean(purchased, nil)
	}
	return s
}
