package classification

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// ROCPoint is one operating point on a receiver operating characteristic
// curve.
type ROCPoint struct {
	FalsePositiveRate float64
	TruePositiveRate  float64
}

// ROCCurve builds the ROC curve for a binary truth series against raw
// classifier scores by sweeping every distinct score as a decision
// threshold, highest first. The curve starts at (0,0) and ends at (1,1);
// records sharing a score move the curve in a single step.
func ROCCurve(truth []bool, scores []float64) []ROCPoint {
	type rated struct {
		score    float64
		positive bool
	}
	pairs := make([]rated, len(scores))
	totalPos, totalNeg := 0, 0
	for i, s := range scores {
		pairs[i] = rated{score: s, positive: truth[i]}
		if truth[i] {
			totalPos++
		} else {
			totalNeg++
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	points := []ROCPoint{{FalsePositiveRate: 0, TruePositiveRate: 0}}
	tp, fp := 0, 0
	for i := 0; i < len(pairs); {
		threshold := pairs[i].score
		for i < len(pairs) && pairs[i].score == threshold {
			if pairs[i].positive {
				tp++
			} else {
				fp++
			}
			i++
		}
		points = append(points, ROCPoint{
			FalsePositiveRate: float64(fp) / float64(totalNeg),
			TruePositiveRate:  float64(tp) / float64(totalPos),
		})
	}
	return points
}

// auc is the trapezoidal area under the curve.
func auc(points []ROCPoint) float64 {
	if len(points) < 2 {
		return math.NaN()
	}
	fpr := make([]float64, len(points))
	tpr := make([]float64, len(points))
	for i, p := range points {
		fpr[i] = p.FalsePositiveRate
		tpr[i] = p.TruePositiveRate
	}
	return integrate.Trapezoidal(fpr, tpr)
}

// aucAboveSensitivity is the partial AUC over the portion of the curve with
// true positive rate at or above floor: the curve is truncated at the floor
// crossing (linearly interpolated) and the remainder integrated with plain
// trapezoids. A sub-integral of the full AUC, so it never exceeds auc and
// equals it when the whole effective curve sits at or above the floor; a
// perfect classifier scores 1.0.
func aucAboveSensitivity(points []ROCPoint, floor float64) float64 {
	if len(points) < 2 {
		return math.NaN()
	}
	area := 0.0
	for i := 1; i < len(points); i++ {
		p0, p1 := points[i-1], points[i]
		if p1.TruePositiveRate < floor {
			continue
		}
		if p0.TruePositiveRate < floor {
			t := (floor - p0.TruePositiveRate) / (p1.TruePositiveRate - p0.TruePositiveRate)
			p0 = ROCPoint{
				FalsePositiveRate: p0.FalsePositiveRate + t*(p1.FalsePositiveRate-p0.FalsePositiveRate),
				TruePositiveRate:  floor,
			}
		}
		width := p1.FalsePositiveRate - p0.FalsePositiveRate
		area += width * (p0.TruePositiveRate + p1.TruePositiveRate) / 2
	}
	return area
}
