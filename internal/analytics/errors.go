// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package analytics

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned by read operations that require a completed fit.
var ErrNotFitted = errors.New("analytics: models not fitted")

// InsufficientDataError reports that a fit attempt cannot proceed because the
// input population (or one of its classes) is too small. It is fatal for that
// attempt and is never retried internally.
type InsufficientDataError struct {
	// Op names the failing operation, e.g. "segmentation" or "churn".
	Op string
	// Detail describes what was missing.
	Detail string
	// Have and Need quantify the shortfall.
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: %s (have %d, need %d)", e.Op, e.Detail, e.Have, e.Need)
}

// InvalidFeatureError reports a feature column that is missing or non-numeric
// after cleaning.
type InvalidFeatureError struct {
	// Feature is the offending column name.
	Feature string
	// Reason describes why the column was rejected.
	Reason string
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("invalid feature %q: %s", e.Feature, e.Reason)
}

// NonConvergenceError reports that clustering failed to converge within the
// configured iteration budget across all initializations. It is surfaced
// explicitly rather than silently returning a degenerate partition.
type NonConvergenceError struct {
	MaxIterations int
	Inits         int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("clustering did not converge within %d iterations in any of %d initializations",
		e.MaxIterations, e.Inits)
}

// UserNotFoundError reports a user absent from one of the feature tables.
// Surfaced as a client-visible not-found condition.
type UserNotFoundError struct {
	// UserID is the requested user.
	UserID string
	// Table names the table the user was missing from ("behavior" or
	// "transactions").
	Table string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found in %s table", e.UserID, e.Table)
}

// IsNotFound reports whether err is a UserNotFoundError.
func IsNotFound(err error) bool {
	var nf *UserNotFoundError
	return errors.As(err, &nf)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var id *InsufficientDataError
	return errors.As(err, &id)
}
