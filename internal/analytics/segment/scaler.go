// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package segment

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler rescales each feature column to zero mean and unit variance.
// The fitted scale is retained so it can be reapplied to new observations.
type StandardScaler struct {
	// Mean holds the per-column means from the fit population.
	Mean []float64
	// Scale holds the per-column standard deviations. Constant columns keep
	// a scale of 1 so transforming them yields 0 instead of NaN.
	Scale []float64
}

// FitScaler computes column statistics over x. All rows must share a width.
func FitScaler(x [][]float64) (*StandardScaler, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("scaler: empty matrix")
	}
	cols := len(x[0])
	col := make([]float64, len(x))
	s := &StandardScaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	for j := 0; j < cols; j++ {
		for i, row := range x {
			if len(row) != cols {
				return nil, fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(row), cols)
			}
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || len(x) < 2 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s, nil
}

// Transform returns a z-scored copy of x using the fitted statistics.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out
}
