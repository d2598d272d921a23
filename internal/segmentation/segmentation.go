// Package segmentation scores binary mask submissions against ground-truth
// masks, one confusion-matrix score record per ground-truth image.
package segmentation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bilal841/isic-challenge-scoring/internal/config"
	"github.com/bilal841/isic-challenge-scoring/internal/mask"
	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// Confusion tallies the four confusion-matrix counts from comparing two
// binarized masks over the same sample grid.
type Confusion struct {
	TruePositive  int
	TrueNegative  int
	FalsePositive int
	FalseNegative int
}

// Total is the number of compared samples.
func (c Confusion) Total() int {
	return c.TruePositive + c.TrueNegative + c.FalsePositive + c.FalseNegative
}

// confusion compares two equal-shaped grids, treating samples strictly above
// threshold as positive.
func confusion(truth, sub *mask.Grid, threshold uint8) Confusion {
	var c Confusion
	for i, tv := range truth.Pix {
		truthPos := tv > threshold
		subPos := sub.Pix[i] > threshold
		switch {
		case truthPos && subPos:
			c.TruePositive++
		case !truthPos && !subPos:
			c.TrueNegative++
		case !truthPos && subPos:
			c.FalsePositive++
		default:
			c.FalseNegative++
		}
	}
	return c
}

// scorePair computes the metric list for one truth/submission mask pair.
// Metrics are plain IEEE-754 ratios: a zero denominator yields NaN or Inf
// rather than an error.
func scorePair(truth, sub *mask.Grid, subName string, cfg config.Scoring) ([]score.Metric, error) {
	if truth.Width != sub.Width || truth.Height != sub.Height {
		return nil, score.Errorf(score.KindShapeMismatch,
			"image %s has dimensions %dx%d; expected %dx%d",
			subName, sub.Width, sub.Height, truth.Width, truth.Height)
	}

	c := confusion(truth, sub, cfg.MaskThreshold)
	tp := float64(c.TruePositive)
	tn := float64(c.TrueNegative)
	fp := float64(c.FalsePositive)
	fn := float64(c.FalseNegative)

	// Dice's denominator is the positive-pixel sum of each mask.
	truthPositives := tp + fn
	subPositives := tp + fp

	return []score.Metric{
		{Name: "accuracy", Value: (tp + tn) / (tp + tn + fp + fn)},
		{Name: "jaccard", Value: tp / (tp + fn + fp)},
		{Name: "dice", Value: 2 * tp / (truthPositives + subPositives)},
		{Name: "sensitivity", Value: tp / (tp + fn)},
		{Name: "specificity", Value: tn / (tn + fp)},
	}, nil
}

// datasetName strips the trailing "_<suffix>" from a truth filename, so
// "ISIC_0000003_Segmentation.png" becomes "ISIC_0000003".
func datasetName(truthName string) string {
	if i := strings.LastIndex(truthName, "_"); i >= 0 {
		return truthName[:i]
	}
	return truthName
}

// Score walks the ground-truth directory in sorted filename order and scores
// each truth mask against its matching submission image. The first failure
// aborts the whole run: a partially scored submission is never reported.
func Score(truthDir, subDir string, cfg config.Scoring) ([]score.Record, error) {
	truthNames, err := listFiles(truthDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth directory: %w", err)
	}
	subNames, err := listFiles(subDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission directory: %w", err)
	}

	// Non-nil so an empty truth directory serializes as an empty list.
	records := []score.Record{}
	for _, truthName := range truthNames {
		subName, err := matchSubmission(truthName, subNames)
		if err != nil {
			return nil, err
		}

		truthGrid, err := loadMask(filepath.Join(truthDir, truthName), truthName)
		if err != nil {
			return nil, err
		}
		subGrid, err := loadMask(filepath.Join(subDir, subName), subName)
		if err != nil {
			return nil, err
		}

		metrics, err := scorePair(truthGrid, subGrid, subName, cfg)
		if err != nil {
			return nil, err
		}
		records = append(records, score.Record{
			Dataset: datasetName(truthName),
			Metrics: metrics,
		})
	}
	return records, nil
}

// listFiles returns the plain-file names in dir, sorted by name.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func loadMask(path, name string) (*mask.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", name, err)
	}
	defer f.Close()

	grid, err := mask.Decode(f, name)
	if err != nil {
		return nil, err
	}
	if err := grid.Normalize(name); err != nil {
		return nil, err
	}
	return grid, nil
}
