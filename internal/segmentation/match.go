package segmentation

import (
	"strings"

	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// imageID extracts the identifier token from a ground-truth filename.
// Truth files look like "ISIC_0000003_Segmentation.png"; the identifier is
// the second underscore-separated token ("0000003").
func imageID(truthName string) (string, bool) {
	parts := strings.Split(truthName, "_")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// matchSubmission finds the one candidate filename containing the truth
// file's identifier as a substring. Zero matches and multiple matches are
// both errors: an ambiguous identifier means the submission cannot be scored
// deterministically.
func matchSubmission(truthName string, candidates []string) (string, error) {
	id, ok := imageID(truthName)
	if !ok {
		return "", score.Errorf(score.KindNoMatch, "cannot derive an image identifier from ground truth file: %s", truthName)
	}

	var matches []string
	for _, candidate := range candidates {
		if strings.Contains(candidate, id) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return "", score.Errorf(score.KindNoMatch, "no matching submission image for: %s", truthName)
	case 1:
		return matches[0], nil
	default:
		return "", score.Errorf(score.KindAmbiguousMatch,
			"multiple submission images match %s: %s", truthName, strings.Join(matches, ", "))
	}
}
