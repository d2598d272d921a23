// Package staging prepares submitted inputs for scoring: it validates the
// shape of an upload directory, extracts a ZIP archive (flattened to base
// names) into a temporary directory, and checks manuscript requirements.
package staging

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bilal841/isic-challenge-scoring/internal/score"
)

// manuscriptDir is the one directory an upload may contain.
const manuscriptDir = "Abstract"

// ExtractZip extracts every file member of the archive into outputDir,
// flattened to its base name. Directory members and macOS resource-fork
// metadata are skipped.
func ExtractZip(zipPath, outputDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return score.Errorf(score.KindSubmission, "could not read ZIP file %q: %v", filepath.Base(zipPath), err)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if strings.HasPrefix(member.Name, "__MACOSX") {
			continue
		}
		base := filepath.Base(filepath.FromSlash(member.Name))
		if base == "" || base == "." || base == "/" || member.FileInfo().IsDir() {
			continue
		}
		if err := extractMember(member, filepath.Join(outputDir, base)); err != nil {
			return score.Errorf(score.KindSubmission, "could not read ZIP file %q: %v", filepath.Base(zipPath), err)
		}
	}
	return nil
}

func extractMember(member *zip.File, outputPath string) error {
	in, err := member.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Stage validates and unpacks one upload directory into a fresh temporary
// directory and returns the staged path plus a cleanup func. The upload must
// contain exactly one file: a ZIP archive, which is extracted, or a bare
// file, which is copied. With allowManuscript, a single "Abstract" directory
// holding exactly one manuscript file may also be present; the manuscript is
// copied alongside the staged content.
func Stage(inputDir string, allowManuscript bool) (string, func(), error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files, dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}

	if len(files) > 1 {
		return "", nil, score.Errorf(score.KindSubmission,
			"multiple files submitted; exactly one ZIP file should be submitted")
	}
	if len(files) < 1 {
		return "", nil, score.Errorf(score.KindSubmission,
			"no files submitted; exactly one ZIP file should be submitted")
	}
	inputFile := filepath.Join(inputDir, files[0])

	manuscript, err := findManuscript(inputDir, dirs, allowManuscript)
	if err != nil {
		return "", nil, err
	}

	outputDir, err := os.MkdirTemp("", "isic-score-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(outputDir) }

	if strings.EqualFold(filepath.Ext(files[0]), ".zip") {
		err = ExtractZip(inputFile, outputDir)
	} else {
		err = copyFile(inputFile, filepath.Join(outputDir, files[0]))
	}
	if err == nil && manuscript != "" {
		err = copyFile(manuscript, filepath.Join(outputDir, filepath.Base(manuscript)))
	}
	if err != nil {
		cleanup()
		return "", nil, err
	}

	return outputDir, cleanup, nil
}

func findManuscript(inputDir string, dirs []string, allowManuscript bool) (string, error) {
	if !allowManuscript {
		if len(dirs) > 0 {
			return "", score.Errorf(score.KindSubmission, "unexpected directory found: %s", dirs[0])
		}
		return "", nil
	}

	if len(dirs) > 1 {
		return "", score.Errorf(score.KindSubmission, "multiple directories found in submission")
	}
	if len(dirs) == 0 {
		return "", nil
	}
	if dirs[0] != manuscriptDir {
		return "", score.Errorf(score.KindSubmission, "unexpected directory found: %s", dirs[0])
	}

	entries, err := os.ReadDir(filepath.Join(inputDir, manuscriptDir))
	if err != nil {
		return "", fmt.Errorf("failed to read manuscript directory: %w", err)
	}
	if len(entries) == 0 {
		return "", score.Errorf(score.KindSubmission, "empty manuscript directory found")
	}
	if len(entries) > 1 {
		return "", score.Errorf(score.KindSubmission, "multiple files found in manuscript directory")
	}
	return filepath.Join(inputDir, manuscriptDir, entries[0].Name()), nil
}

// EnsureManuscript verifies that exactly one PDF manuscript is present in
// the staged directory.
func EnsureManuscript(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read staged directory: %w", err)
	}
	pdfs := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs++
		}
	}
	if pdfs > 1 {
		return score.Errorf(score.KindSubmission,
			"multiple PDFs submitted; exactly one PDF file, containing the descriptive manuscript, must be included")
	}
	if pdfs < 1 {
		return score.Errorf(score.KindSubmission,
			"no PDF submitted; exactly one PDF file, containing the descriptive manuscript, must be included")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
