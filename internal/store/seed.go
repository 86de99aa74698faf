// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package store

import (
	"context"
	"fmt"

	"github.com/shoplens/shoplens/internal/analytics"
	"github.com/shoplens/shoplens/internal/datagen"
)

// SeedIfEmpty populates the database with a synthesized demo population when
// no users are stored yet. Existing data is left untouched so file-backed
// deployments keep their population across restarts.
func (s *Store) SeedIfEmpty(ctx context.Context, cfg datagen.Config) error {
	n, err := s.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug().Int("users", n).Msg("database already seeded")
		return nil
	}

	behavior, transactions, err := datagen.Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate population: %w", err)
	}

	if err := s.SaveBehavior(ctx, behavior.Rows()); err != nil {
		return err
	}
	if err := s.SaveTransactions(ctx, transactions.Rows()); err != nil {
		return err
	}
	if err := s.SaveProducts(ctx, datagen.Catalog()); err != nil {
		return err
	}

	s.logger.Info().
		Int("users", behavior.Len()).
		Int("products", len(datagen.Catalog())).
		Msg("seeded demo population")
	return nil
}

// LoadTables builds the in-memory feature tables from the stored population.
func (s *Store) LoadTables(ctx context.Context) (*analytics.BehaviorTable, *analytics.TransactionTable, []analytics.Product, error) {
	behaviorRows, err := s.LoadBehavior(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	transactionRows, err := s.LoadTransactions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	bt, err := analytics.NewBehaviorTable(behaviorRows)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("behavior table: %w", err)
	}
	tt, err := analytics.NewTransactionTable(transactionRows)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("transaction table: %w", err)
	}
	return bt, tt, products, nil
}
