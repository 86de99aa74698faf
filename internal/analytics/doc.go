// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

// Package analytics defines the core data model shared by the predictive
// pipeline: per-user behavioral and transactional feature profiles, the
// immutable product catalog, and the recommendation records produced for a
// user.
//
// The package deliberately has no dependencies on the estimator packages
// (segment, churn, score) so those can import it freely. The orchestration
// that ties the estimators together lives in the session subpackage.
//
// # Feature tables
//
// BehaviorTable and TransactionTable wrap their profile slices with a
// user-id index. Row order is preserved from construction and is the
// canonical order throughout the pipeline: cluster assignments and churn
// probabilities produced by the estimators are slices aligned with it.
//
// # Error taxonomy
//
// The typed errors in this package (InsufficientDataError,
// InvalidFeatureError, NonConvergenceError, UserNotFoundError) are raised at
// component boundaries and are the caller's responsibility to handle. The
// pipeline never retries internally; a deterministic computation on the same
// bad input cannot succeed twice.
package analytics
