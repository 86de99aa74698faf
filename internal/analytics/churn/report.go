// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package churn

// ClassReport holds per-class evaluation figures on the held-out split.
type ClassReport struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the held-out evaluation summary.
type Report struct {
	Classes  []ClassReport `json:"classes"`
	Accuracy float64       `json:"accuracy"`
}

// buildReport computes precision, recall and F1 for both classes plus overall
// accuracy. Undefined ratios (zero denominators) report as 0.
func buildReport(yTrue, yPred []bool) Report {
	var tp, fp, tn, fn int
	for i := range yTrue {
		switch {
		case yTrue[i] && yPred[i]:
			tp++
		case yTrue[i] && !yPred[i]:
			fn++
		case !yTrue[i] && yPred[i]:
			fp++
		default:
			tn++
		}
	}

	r := Report{
		Classes: []ClassReport{
			classReport("retained", tn, fn, fp),
			classReport("churned", tp, fp, fn),
		},
	}
	if len(yTrue) > 0 {
		r.Accuracy = float64(tp+tn) / float64(len(yTrue))
	}
	return r
}

// classReport builds one class entry from its confusion counts: correct is
// true positives for the class, predOther the false positives, missOther the
// false negatives.
func classReport(class string, correct, predOther, missOther int) ClassReport {
	c := ClassReport{Class: class, Support: correct + missOther}
	if correct+predOther > 0 {
		c.Precision = float64(correct) / float64(correct+predOther)
	}
	if c.Support > 0 {
		c.Recall = float64(correct) / float64(c.Support)
	}
	if c.Precision+c.Recall > 0 {
		c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
	}
	return c
}
