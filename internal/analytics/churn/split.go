// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package churn

import (
	"math"
	"math/rand"

	"github.com/shoplens/shoplens/internal/analytics"
)

// minClassExamples is the least examples of each class the training split
// must retain for the fit to proceed.
const minClassExamples = 2

// stratifiedSplit partitions row indices into train and test sets while
// preserving the class ratio. Each class is shuffled independently with the
// shared source, so the split is deterministic for a fixed seed.
func stratifiedSplit(y []bool, testRatio float64, rng *rand.Rand) (train, test []int, err error) {
	var pos, neg []int
	for i, v := range y {
		if v {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	for _, class := range [][]int{neg, pos} {
		rng.Shuffle(len(class), func(i, j int) {
			class[i], class[j] = class[j], class[i]
		})
		nTest := int(math.Round(float64(len(class)) * testRatio))
		if nTest >= len(class) && len(class) > 0 {
			nTest = len(class) - 1
		}
		test = append(test, class[:nTest]...)
		train = append(train, class[nTest:]...)
	}

	trainPos, trainNeg := 0, 0
	for _, i := range train {
		if y[i] {
			trainPos++
		} else {
			trainNeg++
		}
	}
	if trainPos < minClassExamples || trainNeg < minClassExamples {
		have := trainPos
		detail := "too few churned users in training split"
		if trainNeg < trainPos {
			have = trainNeg
			detail = "too few retained users in training split"
		}
		return nil, nil, &analytics.InsufficientDataError{
			Op:     "churn",
			Detail: detail,
			Have:   have,
			Need:   minClassExamples,
		}
	}
	return train, test, nil
}
