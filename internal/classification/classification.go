// Package classification scores multi-class probability submissions: one
// aggregate balanced-accuracy record plus one confusion/ROC record per
// category in canonical order.
package classification

import (
	"io"

	"github.com/bilal841/isic-challenge-scoring/internal/config"
	"github.com/bilal841/isic-challenge-scoring/internal/score"
	"github.com/bilal841/isic-challenge-scoring/internal/tabular"
)

// confusion tallies TP/TN/FP/FN from two aligned boolean series.
type confusion struct {
	tp, tn, fp, fn float64
}

func confusionCounts(truth, pred []bool) confusion {
	var c confusion
	for i, t := range truth {
		p := pred[i]
		switch {
		case t && p:
			c.tp++
		case !t && !p:
			c.tn++
		case !t && p:
			c.fp++
		default:
			c.fn++
		}
	}
	return c
}

// argmax returns the index of the largest value; ties break to the lowest
// index.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// balancedMulticlassAccuracy averages per-class recall, with true and
// predicted classes taken as each row's argmax category. Categories that
// never occur as a truth argmax do not contribute to the average.
func balancedMulticlassAccuracy(truth, pred *tabular.Table) float64 {
	classes := len(truth.Categories)
	correct := make([]float64, classes)
	total := make([]float64, classes)

	for i, truthRow := range truth.Rows {
		trueClass := argmax(truthRow.Values)
		predClass := argmax(pred.Rows[i].Values)
		total[trueClass]++
		if predClass == trueClass {
			correct[trueClass]++
		}
	}

	sum, seen := 0.0, 0
	for c := 0; c < classes; c++ {
		if total[c] == 0 {
			continue
		}
		sum += correct[c] / total[c]
		seen++
	}
	return sum / float64(seen)
}

// binarize thresholds a probability series: positive iff value > threshold.
func binarize(values []float64, threshold float64) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v > threshold
	}
	return out
}

// categoryMetrics computes the fixed per-category metric list from the
// truth and prediction series of one category. Ratios with a zero
// denominator are NaN.
func categoryMetrics(truthProbs, predProbs []float64, cfg config.Scoring) []score.Metric {
	truthBinary := binarize(truthProbs, cfg.ProbabilityThreshold)
	predBinary := binarize(predProbs, cfg.ProbabilityThreshold)
	c := confusionCounts(truthBinary, predBinary)

	curve := ROCCurve(truthBinary, predProbs)

	return []score.Metric{
		{Name: "accuracy", Value: (c.tp + c.tn) / (c.tp + c.tn + c.fp + c.fn)},
		{Name: "sensitivity", Value: c.tp / (c.tp + c.fn)},
		{Name: "specificity", Value: c.tn / (c.tn + c.fp)},
		{Name: "f1_score", Value: 2 * c.tp / (2*c.tp + c.fp + c.fn)},
		{Name: "ppv", Value: c.tp / (c.tp + c.fp)},
		{Name: "npv", Value: c.tn / (c.tn + c.fn)},
		{Name: "auc", Value: auc(curve)},
		{Name: "auc_sens_80", Value: aucAboveSensitivity(curve, cfg.SensitivityFloor)},
	}
}

// Score computes the full classification score list for two row-aligned
// tables: the aggregate record first, then one record per category in
// canonical order.
func Score(truth, pred *tabular.Table, cfg config.Scoring) []score.Record {
	records := []score.Record{
		{
			Dataset: score.Aggregate,
			Metrics: []score.Metric{
				{Name: "balanced_accuracy", Value: balancedMulticlassAccuracy(truth, pred)},
			},
		},
	}

	for c, category := range truth.Categories {
		records = append(records, score.Record{
			Dataset: category,
			Metrics: categoryMetrics(truth.Column(c), pred.Column(c), cfg),
		})
	}
	return records
}

// Curves returns the per-category ROC curves, keyed by category code, for
// diagnostic rendering.
func Curves(truth, pred *tabular.Table, cfg config.Scoring) map[string][]ROCPoint {
	curves := make(map[string][]ROCPoint, len(truth.Categories))
	for c, category := range truth.Categories {
		truthBinary := binarize(truth.Column(c), cfg.ProbabilityThreshold)
		curves[category] = ROCCurve(truthBinary, pred.Column(c))
	}
	return curves
}

// ScoreStreams runs the whole tabular pipeline over two raw CSV streams:
// parse and validate both tables, drop excluded images, verify row
// alignment, then score.
func ScoreStreams(truthCSV, predCSV io.Reader, cfg config.Scoring) ([]score.Record, error) {
	truth, err := tabular.ParseCSV(truthCSV, cfg)
	if err != nil {
		return nil, err
	}
	pred, err := tabular.ParseCSV(predCSV, cfg)
	if err != nil {
		return nil, err
	}

	truth.Exclude(cfg.ExcludedImages)
	pred.Exclude(cfg.ExcludedImages)

	if err := tabular.Align(truth, pred); err != nil {
		return nil, err
	}

	return Score(truth, pred, cfg), nil
}
