// Package tabular parses and validates per-image probability tables and
// reconciles a submitted table against ground truth before scoring.
//
// A Table's rows are always sorted by image identifier; the deterministic
// ordering the metric engines rely on is part of the type's contract, not a
// property of any particular map iteration.
package tabular

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bilal841/isic-challenge-scoring/internal/config"
	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// Row is one image's probabilities, parallel to the table's Categories.
type Row struct {
	ID     string
	Values []float64
}

// Table is a validated probability table. Categories are in canonical
// configuration order regardless of the CSV's column order; Rows are sorted
// ascending by ID and IDs are unique.
type Table struct {
	Categories []string
	Rows       []Row
}

// ParseCSV reads a comma-delimited probability table and validates it
// against the configured schema: the identifier column plus exactly the
// configured category columns, every cell a float in [0, 1].
func ParseCSV(r io.Reader, cfg config.Scoring) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, score.Errorf(score.KindSchema, "could not read CSV header: %v", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	idCol := -1
	for i, name := range header {
		if name == cfg.IdentifierColumn {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, score.Errorf(score.KindSchema, "missing column in CSV: %q", cfg.IdentifierColumn)
	}

	// Map each configured category to its CSV column, then flag anything
	// missing or unrecognized.
	colForCategory := make([]int, len(cfg.Categories))
	var missing []string
	for i, category := range cfg.Categories {
		colForCategory[i] = -1
		for j, name := range header {
			if name == category {
				colForCategory[i] = j
				break
			}
		}
		if colForCategory[i] < 0 {
			missing = append(missing, category)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, score.Errorf(score.KindSchema, "missing columns in CSV: [%s]", strings.Join(missing, " "))
	}

	var extra []string
	for j, name := range header {
		if j == idCol {
			continue
		}
		known := false
		for _, col := range colForCategory {
			if col == j {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, score.Errorf(score.KindSchema, "extra columns in CSV: [%s]", strings.Join(extra, " "))
	}

	table := &Table{Categories: append([]string(nil), cfg.Categories...)}
	seen := make(map[string]bool)

	// Cell-level violations are collected across the whole table so the
	// error can name every affected image or column at once.
	var missingValueIDs []string
	nonFloatCols := make(map[string]bool)
	var outOfRangeIDs []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, score.Errorf(score.KindSchema, "malformed CSV row: %v", err)
		}

		id := strings.TrimSpace(record[idCol])
		if seen[id] {
			return nil, score.Errorf(score.KindSchema, "duplicate image identifier in CSV: %s", id)
		}
		seen[id] = true

		row := Row{ID: id, Values: make([]float64, len(cfg.Categories))}
		rowMissing := false
		rowOutOfRange := false
		for i, col := range colForCategory {
			cell := strings.TrimSpace(record[col])
			if cell == "" {
				rowMissing = true
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				nonFloatCols[cfg.Categories[i]] = true
				continue
			}
			if value < 0.0 || value > 1.0 {
				rowOutOfRange = true
			}
			row.Values[i] = value
		}
		if rowMissing {
			missingValueIDs = append(missingValueIDs, id)
		}
		if rowOutOfRange {
			outOfRangeIDs = append(outOfRangeIDs, id)
		}
		table.Rows = append(table.Rows, row)
	}

	if len(missingValueIDs) > 0 {
		return nil, score.Errorf(score.KindMissingValue,
			"missing value(s) in CSV for images: [%s]", strings.Join(missingValueIDs, " "))
	}
	if len(nonFloatCols) > 0 {
		cols := make([]string, 0, len(nonFloatCols))
		for name := range nonFloatCols {
			cols = append(cols, name)
		}
		sort.Strings(cols)
		return nil, score.Errorf(score.KindBadType,
			"CSV contains non-floating-point value(s) in columns: [%s]", strings.Join(cols, " "))
	}
	if len(outOfRangeIDs) > 0 {
		return nil, score.Errorf(score.KindOutOfRange,
			"values in CSV are outside the interval [0.0, 1.0] for images: [%s]", strings.Join(outOfRangeIDs, " "))
	}

	sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i].ID < table.Rows[j].ID })
	return table, nil
}

// IDs returns the table's image identifiers in row order.
func (t *Table) IDs() []string {
	ids := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		ids[i] = row.ID
	}
	return ids
}

// Column returns the probability series of the category at index c, in row
// order.
func (t *Table) Column(c int) []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Values[c]
	}
	return values
}
