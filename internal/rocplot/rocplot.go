// Package rocplot renders per-category ROC curves as PNG files for
// diagnostic inspection of a scored submission.
package rocplot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bilal841/isic-challenge-scoring/internal/classification"
)

// Render writes one ROC curve plot to dir as "roc_<category>.png". The
// chance diagonal is drawn alongside the curve for reference.
func Render(dir, category string, points []classification.ROCPoint) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC: %s", category)
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, 0, len(points))
	for _, point := range points {
		pts = append(pts, plotter.XY{X: point.FalsePositiveRate, Y: point.TruePositiveRate})
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build ROC line for %s: %w", category, err)
	}
	curve.Width = vg.Points(1)
	p.Add(curve)

	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return fmt.Errorf("failed to build chance line for %s: %w", category, err)
	}
	diagonal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(diagonal)

	outFile := filepath.Join(dir, fmt.Sprintf("roc_%s.png", category))
	if err := p.Save(6*vg.Inch, 6*vg.Inch, outFile); err != nil {
		return fmt.Errorf("failed to save ROC plot %s: %w", outFile, err)
	}
	return nil
}

// RenderAll writes one plot per category into dir, creating it if needed.
// Categories are rendered in sorted order so failures are deterministic.
func RenderAll(dir string, curves map[string][]classification.ROCPoint) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plot dir: %w", err)
	}
	categories := make([]string, 0, len(curves))
	for category := range curves {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		if err := Render(dir, category, curves[category]); err != nil {
			return err
		}
	}
	return nil
}
