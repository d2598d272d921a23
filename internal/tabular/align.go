package tabular

import (
	"strings"

	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// Exclude removes the given image identifiers from the table, tolerating
// identifiers that are not present. Row order is preserved.
func (t *Table) Exclude(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if !drop[row.ID] {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// Align verifies that the prediction table covers exactly the ground-truth
// identifier set. Missing and extra identifiers are checked independently;
// the first violated check fails with its full sorted identifier list.
func Align(truth, pred *Table) error {
	predIDs := make(map[string]bool, len(pred.Rows))
	for _, row := range pred.Rows {
		predIDs[row.ID] = true
	}

	var missing []string
	for _, row := range truth.Rows {
		if !predIDs[row.ID] {
			missing = append(missing, row.ID)
		}
	}
	if len(missing) > 0 {
		return score.Errorf(score.KindMissingRecords,
			"missing images in CSV: [%s]", strings.Join(missing, " "))
	}

	truthIDs := make(map[string]bool, len(truth.Rows))
	for _, row := range truth.Rows {
		truthIDs[row.ID] = true
	}
	var extra []string
	for _, row := range pred.Rows {
		if !truthIDs[row.ID] {
			extra = append(extra, row.ID)
		}
	}
	if len(extra) > 0 {
		return score.Errorf(score.KindExtraRecords,
			"extra images in CSV: [%s]", strings.Join(extra, " "))
	}

	return nil
}
