package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scoring holds the parameters governing submission validation and metric
// computation. Category order is significant: it fixes the canonical column
// order of probability tables and the order of per-category score records.
type Scoring struct {
	// IdentifierColumn is the CSV column holding the image identifier.
	IdentifierColumn string

	// Categories is the required label set, in canonical output order.
	Categories []string

	// ExcludedImages are known-bad or retracted identifiers removed from
	// both ground truth and submission before alignment.
	ExcludedImages []string

	// MaskThreshold binarizes mask samples: positive iff value > threshold.
	MaskThreshold uint8

	// ProbabilityThreshold binarizes probability columns: positive iff
	// value > threshold.
	ProbabilityThreshold float64

	// SensitivityFloor is the lower sensitivity bound of the partial-AUC
	// metric (auc_sens_80 when the floor is 0.80).
	SensitivityFloor float64
}

// scoringFile is the on-disk form. All fields are optional; absent fields
// keep their default value, matching the runtime-override config schema.
type scoringFile struct {
	IdentifierColumn     *string  `json:"identifier_column,omitempty"`
	Categories           []string `json:"categories,omitempty"`
	ExcludedImages       []string `json:"excluded_images,omitempty"`
	MaskThreshold        *int     `json:"mask_threshold,omitempty"`
	ProbabilityThreshold *float64 `json:"probability_threshold,omitempty"`
	SensitivityFloor     *float64 `json:"sensitivity_floor,omitempty"`
}

// DefaultScoring returns the challenge's standard configuration: the seven
// diagnosis categories in reporting order and the retracted-image exclusion.
func DefaultScoring() Scoring {
	return Scoring{
		IdentifierColumn:     "image",
		Categories:           []string{"MEL", "NV", "BCC", "AKIEC", "BKL", "DF", "VASC"},
		ExcludedImages:       []string{"ISIC_0035068"},
		MaskThreshold:        128,
		ProbabilityThreshold: 0.5,
		SensitivityFloor:     0.80,
	}
}

// LoadScoring reads a JSON overrides file and merges it over DefaultScoring.
// A missing path is not an error when path is empty.
func LoadScoring(path string) (Scoring, error) {
	cfg := DefaultScoring()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read scoring config %s: %w", path, err)
	}

	var file scoringFile
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse scoring config %s: %w", path, err)
	}

	if file.IdentifierColumn != nil {
		cfg.IdentifierColumn = *file.IdentifierColumn
	}
	if file.Categories != nil {
		cfg.Categories = file.Categories
	}
	if file.ExcludedImages != nil {
		cfg.ExcludedImages = file.ExcludedImages
	}
	if file.MaskThreshold != nil {
		if *file.MaskThreshold < 0 || *file.MaskThreshold > 255 {
			return cfg, fmt.Errorf("mask_threshold %d out of range [0,255]", *file.MaskThreshold)
		}
		cfg.MaskThreshold = uint8(*file.MaskThreshold)
	}
	if file.ProbabilityThreshold != nil {
		cfg.ProbabilityThreshold = *file.ProbabilityThreshold
	}
	if file.SensitivityFloor != nil {
		if *file.SensitivityFloor <= 0 || *file.SensitivityFloor >= 1 {
			return cfg, fmt.Errorf("sensitivity_floor %v out of range (0,1)", *file.SensitivityFloor)
		}
		cfg.SensitivityFloor = *file.SensitivityFloor
	}

	return cfg, nil
}
