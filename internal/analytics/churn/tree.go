// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package churn

import (
	"math/rand"
	"sort"
)

// decisionTree is a single CART classifier. Internal nodes carry a feature
// and threshold; leaves carry the positive-class fraction of the training
// samples that reached them.
type decisionTree struct {
	root *treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	leaf      bool
	prob      float64
}

// proba walks the tree and returns the leaf's positive fraction.
func (t *decisionTree) proba(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.prob
}

// growTree builds a depth-bounded tree on the bootstrap sample. Impurity
// decreases are accumulated into importances, weighted by the fraction of
// the sample reaching each split.
func growTree(x [][]float64, y []bool, sample []int, cfg Config, mtry int, rng *rand.Rand, importances []float64) *decisionTree {
	g := &grower{
		x:           x,
		y:           y,
		cfg:         cfg,
		mtry:        mtry,
		rng:         rng,
		total:       float64(len(sample)),
		importances: importances,
	}
	return &decisionTree{root: g.build(sample, 0)}
}

type grower struct {
	x           [][]float64
	y           []bool
	cfg         Config
	mtry        int
	rng         *rand.Rand
	total       float64
	importances []float64
}

func (g *grower) build(idx []int, depth int) *treeNode {
	pos := 0
	for _, i := range idx {
		if g.y[i] {
			pos++
		}
	}
	prob := float64(pos) / float64(len(idx))

	if depth >= g.cfg.MaxDepth || pos == 0 || pos == len(idx) || len(idx) < 2*g.cfg.MinLeaf {
		return &treeNode{leaf: true, prob: prob}
	}

	feature, threshold, decrease, ok := g.bestSplit(idx, prob)
	if !ok {
		return &treeNode{leaf: true, prob: prob}
	}
	g.importances[feature] += decrease * float64(len(idx)) / g.total

	var left, right []int
	for _, i := range idx {
		if g.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      g.build(left, depth+1),
		right:     g.build(right, depth+1),
	}
}

// bestSplit searches a random subset of mtry features for the threshold with
// the largest gini decrease. Candidate thresholds are midpoints between
// distinct consecutive sorted values.
func (g *grower) bestSplit(idx []int, parentProb float64) (feature int, threshold, decrease float64, ok bool) {
	parentGini := gini(parentProb)

	features := g.rng.Perm(len(FeatureNames))[:g.mtry]

	order := make([]int, len(idx))
	bestDecrease := 0.0
	n := float64(len(idx))

	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return g.x[order[a]][f] < g.x[order[b]][f]
		})

		totalPos := 0
		for _, i := range order {
			if g.y[i] {
				totalPos++
			}
		}

		leftPos := 0
		for split := 1; split < len(order); split++ {
			if g.y[order[split-1]] {
				leftPos++
			}
			lo := g.x[order[split-1]][f]
			hi := g.x[order[split]][f]
			if lo == hi {
				continue
			}
			if split < g.cfg.MinLeaf || len(order)-split < g.cfg.MinLeaf {
				continue
			}

			nl := float64(split)
			nr := n - nl
			gl := gini(float64(leftPos) / nl)
			gr := gini(float64(totalPos-leftPos) / nr)
			d := parentGini - (nl/n)*gl - (nr/n)*gr
			if d > bestDecrease {
				bestDecrease = d
				feature = f
				threshold = (lo + hi) / 2
			}
		}
	}

	if bestDecrease <= 0 {
		return 0, 0, 0, false
	}
	return feature, threshold, bestDecrease, true
}

// gini is the binary Gini impurity for a positive-class fraction.
func gini(p float64) float64 {
	return 2 * p * (1 - p)
}
