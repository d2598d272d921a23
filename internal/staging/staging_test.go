package staging

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// writeZip builds a ZIP archive at path from member name -> content.
func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readDirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestExtractZip(t *testing.T) {
	t.Parallel()

	t.Run("flattens members and skips metadata", func(t *testing.T) {
		t.Parallel()
		zipPath := filepath.Join(t.TempDir(), "submission.zip")
		writeZip(t, zipPath, map[string]string{
			"results/predictions.csv":    "image,MEL\n",
			"__MACOSX/._predictions.csv": "junk",
		})

		outDir := t.TempDir()
		require.NoError(t, ExtractZip(zipPath, outDir))
		assert.Equal(t, []string{"predictions.csv"}, readDirNames(t, outDir))

		data, err := os.ReadFile(filepath.Join(outDir, "predictions.csv"))
		require.NoError(t, err)
		assert.Equal(t, "image,MEL\n", string(data))
	})

	t.Run("corrupt archive fails naming the file", func(t *testing.T) {
		t.Parallel()
		zipPath := filepath.Join(t.TempDir(), "broken.zip")
		writeFile(t, zipPath, "this is not a zip")

		err := ExtractZip(zipPath, t.TempDir())

		var scoreErr *score.Error
		require.ErrorAs(t, err, &scoreErr)
		assert.Equal(t, score.KindSubmission, scoreErr.Kind)
		assert.Contains(t, err.Error(), "broken.zip")
	})
}

func TestStage(t *testing.T) {
	t.Parallel()

	t.Run("extracts a single zip upload", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeZip(t, filepath.Join(inputDir, "upload.zip"), map[string]string{
			"a.png": "a", "b.png": "b",
		})

		staged, cleanup, err := Stage(inputDir, false)
		require.NoError(t, err)
		defer cleanup()

		assert.ElementsMatch(t, []string{"a.png", "b.png"}, readDirNames(t, staged))
	})

	t.Run("copies a bare non-zip upload", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeFile(t, filepath.Join(inputDir, "predictions.csv"), "image,MEL\n")

		staged, cleanup, err := Stage(inputDir, false)
		require.NoError(t, err)
		defer cleanup()

		assert.Equal(t, []string{"predictions.csv"}, readDirNames(t, staged))
	})

	t.Run("multiple uploads fail", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeFile(t, filepath.Join(inputDir, "one.zip"), "x")
		writeFile(t, filepath.Join(inputDir, "two.zip"), "x")

		_, _, err := Stage(inputDir, false)
		var scoreErr *score.Error
		require.ErrorAs(t, err, &scoreErr)
		assert.Contains(t, err.Error(), "multiple files submitted")
	})

	t.Run("empty upload fails", func(t *testing.T) {
		t.Parallel()
		_, _, err := Stage(t.TempDir(), false)
		assert.ErrorContains(t, err, "no files submitted")
	})

	t.Run("manuscript directory is staged alongside content", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeZip(t, filepath.Join(inputDir, "upload.zip"), map[string]string{"a.csv": "a"})
		require.NoError(t, os.Mkdir(filepath.Join(inputDir, "Abstract"), 0755))
		writeFile(t, filepath.Join(inputDir, "Abstract", "paper.pdf"), "pdf")

		staged, cleanup, err := Stage(inputDir, true)
		require.NoError(t, err)
		defer cleanup()

		assert.ElementsMatch(t, []string{"a.csv", "paper.pdf"}, readDirNames(t, staged))
		require.NoError(t, EnsureManuscript(staged))
	})

	t.Run("unexpected directory fails without manuscript allowance", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeFile(t, filepath.Join(inputDir, "upload.zip"), "x")
		require.NoError(t, os.Mkdir(filepath.Join(inputDir, "Extra"), 0755))

		_, _, err := Stage(inputDir, false)
		assert.ErrorContains(t, err, "Extra")
	})

	t.Run("wrongly named directory fails even with allowance", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeFile(t, filepath.Join(inputDir, "upload.zip"), "x")
		require.NoError(t, os.Mkdir(filepath.Join(inputDir, "Papers"), 0755))

		_, _, err := Stage(inputDir, true)
		assert.ErrorContains(t, err, "Papers")
	})

	t.Run("empty manuscript directory fails", func(t *testing.T) {
		t.Parallel()
		inputDir := t.TempDir()
		writeFile(t, filepath.Join(inputDir, "upload.zip"), "x")
		require.NoError(t, os.Mkdir(filepath.Join(inputDir, "Abstract"), 0755))

		_, _, err := Stage(inputDir, true)
		assert.ErrorContains(t, err, "empty manuscript directory")
	})
}

func TestEnsureManuscript(t *testing.T) {
	t.Parallel()

	t.Run("exactly one pdf passes", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "paper.PDF"), "pdf")
		writeFile(t, filepath.Join(dir, "predictions.csv"), "data")

		assert.NoError(t, EnsureManuscript(dir))
	})

	t.Run("no pdf fails", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "predictions.csv"), "data")

		assert.ErrorContains(t, EnsureManuscript(dir), "no PDF submitted")
	})

	t.Run("multiple pdfs fail", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.pdf"), "pdf")
		writeFile(t, filepath.Join(dir, "b.pdf"), "pdf")

		assert.ErrorContains(t, EnsureManuscript(dir), "multiple PDFs submitted")
	})
}
