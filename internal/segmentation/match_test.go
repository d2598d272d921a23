package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

func TestMatchSubmission(t *testing.T) {
	t.Parallel()

	t.Run("matches by embedded identifier", func(t *testing.T) {
		t.Parallel()
		candidates := []string{"team_0000004_mask.png", "team_0000003_mask.png"}

		match, err := matchSubmission("ISIC_0000003_Segmentation.png", candidates)
		require.NoError(t, err)
		assert.Equal(t, "team_0000003_mask.png", match)
	})

	t.Run("no candidates fail with the truth filename", func(t *testing.T) {
		t.Parallel()
		_, err := matchSubmission("ISIC_0000003_Segmentation.png", []string{"team_0000004.png"})

		var scoreErr *score.Error
		require.ErrorAs(t, err, &scoreErr)
		assert.Equal(t, score.KindNoMatch, scoreErr.Kind)
		assert.Contains(t, err.Error(), "ISIC_0000003_Segmentation.png")
	})

	t.Run("multiple candidates are ambiguous", func(t *testing.T) {
		t.Parallel()
		candidates := []string{"a_0000003.png", "b_0000003.png"}

		_, err := matchSubmission("ISIC_0000003_Segmentation.png", candidates)

		var scoreErr *score.Error
		require.ErrorAs(t, err, &scoreErr)
		assert.Equal(t, score.KindAmbiguousMatch, scoreErr.Kind)
		assert.Contains(t, err.Error(), "a_0000003.png")
		assert.Contains(t, err.Error(), "b_0000003.png")
	})

	t.Run("truth filename without identifier token fails", func(t *testing.T) {
		t.Parallel()
		_, err := matchSubmission("README.txt", []string{"anything.png"})
		assert.Error(t, err)
	})
}
