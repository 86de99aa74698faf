// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shoplens/shoplens/internal/analytics"
	"github.com/shoplens/shoplens/internal/metrics"
)

// SaveBehavior replaces the stored behavioral profiles with the given rows.
func (s *Store) SaveBehavior(ctx context.Context, rows []analytics.BehaviorProfile) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_behavior`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO user_behavior
			(user_id, total_events, page_views, clicks, add_to_cart,
			 unique_products, total_session_time, conversion_rate, avg_time_per_event)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				r.UserID, r.TotalEvents, r.PageViews, r.Clicks, r.AddToCart,
				r.UniqueProducts, r.TotalSessionTime, r.ConversionRate, r.AvgTimePerEvent,
			); err != nil {
				return fmt.Errorf("insert behavior %s: %w", r.UserID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert", "user_behavior", time.Since(start), err)
	return err
}

// SaveTransactions replaces the stored transactional profiles.
func (s *Store) SaveTransactions(ctx context.Context, rows []analytics.TransactionProfile) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_transactions`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO user_transactions
			(user_id, segment, lifetime_value, order_count, avg_ticket,
			 unique_products_purchased, days_since_last_purchase, spend_variability)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				r.UserID, string(r.Segment), r.LifetimeValue, r.OrderCount, r.AvgTicket,
				r.UniqueProductsPurchased, r.DaysSinceLastPurchase, r.SpendVariability,
			); err != nil {
				return fmt.Errorf("insert transactions %s: %w", r.UserID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert", "user_transactions", time.Since(start), err)
	return err
}

// SaveProducts replaces the stored catalog.
func (s *Store) SaveProducts(ctx context.Context, products []analytics.Product) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO products
			(id, name, category, price, brand) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range products {
			if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Category, p.Price, p.Brand); err != nil {
				return fmt.Errorf("insert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert", "products", time.Since(start), err)
	return err
}

// LoadBehavior reads all behavioral profiles in user_id order.
func (s *Store) LoadBehavior(ctx context.Context) ([]analytics.BehaviorProfile, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `SELECT
		user_id, total_events, page_views, clicks, add_to_cart,
		unique_products, total_session_time, conversion_rate, avg_time_per_event
		FROM user_behavior ORDER BY user_id`)
	metrics.RecordDBQuery("select", "user_behavior", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load behavior: %w", err)
	}
	defer rows.Close()

	var out []analytics.BehaviorProfile
	for rows.Next() {
		var r analytics.BehaviorProfile
		if err := rows.Scan(
			&r.UserID, &r.TotalEvents, &r.PageViews, &r.Clicks, &r.AddToCart,
			&r.UniqueProducts, &r.TotalSessionTime, &r.ConversionRate, &r.AvgTimePerEvent,
		); err != nil {
			return nil, fmt.Errorf("scan behavior: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadTransactions reads all transactional profiles in user_id order.
func (s *Store) LoadTransactions(ctx context.Context) ([]analytics.TransactionProfile, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `SELECT
		user_id, segment, lifetime_value, order_count, avg_ticket,
		unique_products_purchased, days_since_last_purchase, spend_variability
		FROM user_transactions ORDER BY user_id`)
	metrics.RecordDBQuery("select", "user_transactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var out []analytics.TransactionProfile
	for rows.Next() {
		var r analytics.TransactionProfile
		var segment string
		if err := rows.Scan(
			&r.UserID, &segment, &r.LifetimeValue, &r.OrderCount, &r.AvgTicket,
			&r.UniqueProductsPurchased, &r.DaysSinceLastPurchase, &r.SpendVariability,
		); err != nil {
			return nil, fmt.Errorf("scan transactions: %w", err)
		}
		r.Segment = analytics.Segment(segment)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadProducts reads the catalog in id order.
func (s *Store) LoadProducts(ctx context.Context) ([]analytics.Product, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, category, price, brand FROM products ORDER BY id`)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var out []analytics.Product
	for rows.Next() {
		var p analytics.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Brand); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveRecommendations appends a served recommendation list for audit.
// Reasons are stored comma-joined; they are presentation tags, not entities.
func (s *Store) SaveRecommendations(ctx context.Context, recs []analytics.Recommendation, modelVersion int) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO recommendations
			(user_id, product_id, score, rank, reasons, model_version)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range recs {
			if _, err := stmt.ExecContext(ctx,
				r.UserID, r.ProductID, r.Score, r.Rank,
				strings.Join(r.Reasons, ","), modelVersion,
			); err != nil {
				return fmt.Errorf("insert recommendation %s/%s: %w", r.UserID, r.ProductID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert", "recommendations", time.Since(start), err)
	return err
}

// RecommendationHistory returns the most recent stored recommendations for a
// user, newest first.
func (s *Store) RecommendationHistory(ctx context.Context, userID string, limit int) ([]analytics.Recommendation, error) {
	if limit <= 0 {
		limit = 20
	}
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `SELECT user_id, product_id, score, rank, reasons
		FROM recommendations WHERE user_id = ? ORDER BY created_at DESC, rank ASC LIMIT ?`,
		userID, limit)
	metrics.RecordDBQuery("select", "recommendations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load recommendation history: %w", err)
	}
	defer rows.Close()

	var out []analytics.Recommendation
	for rows.Next() {
		var r analytics.Recommendation
		var reasons string
		if err := rows.Scan(&r.UserID, &r.ProductID, &r.Score, &r.Rank, &reasons); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if reasons != "" {
			r.Reasons = strings.Split(reasons, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}
	return tx.Commit()
}
