// Command isic-score validates and scores an ISIC challenge submission
// against ground truth, printing the score list as JSON on stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bilal841/isic-challenge-scoring/internal/classification"
	"github.com/bilal841/isic-challenge-scoring/internal/config"
	"github.com/bilal841/isic-challenge-scoring/internal/rocplot"
	"github.com/bilal841/isic-challenge-scoring/internal/score"
	"github.com/bilal841/isic-challenge-scoring/internal/segmentation"
	"github.com/bilal841/isic-challenge-scoring/internal/staging"
	"github.com/bilal841/isic-challenge-scoring/internal/tabular"
	"github.com/bilal841/isic-challenge-scoring/internal/version"
)

var truthCSVPattern = regexp.MustCompile(`^ISIC.*GroundTruth\.csv$`)

// result is the JSON envelope printed on success.
type result struct {
	RunID       string         `json:"run_id"`
	Task        string         `json:"task"`
	GeneratedAt time.Time      `json:"generated_at"`
	Scores      []score.Record `json:"scores"`
}

func main() {
	task := flag.String("task", "", "Scoring task: segmentation or classification")
	truthDir := flag.String("truth", "", "Directory holding the ground truth upload")
	subDir := flag.String("submission", "", "Directory holding the submission upload")
	configPath := flag.String("config", "", "Optional JSON scoring config overrides")
	staged := flag.Bool("staged", false, "Treat inputs as already-extracted directories, skipping ZIP staging")
	requireManuscript := flag.Bool("require-manuscript", false, "Require exactly one PDF manuscript in the submission")
	rocDir := flag.String("roc-plots", "", "Optional directory for per-category ROC curve plots (classification only)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("isic-score %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *task == "" || *truthDir == "" || *subDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: isic-score -task TASK -truth DIR -submission DIR [OPTIONS]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadScoring(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := run(*task, *truthDir, *subDir, cfg, *staged, *requireManuscript, *rocDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(task, truthDir, subDir string, cfg config.Scoring, staged, requireManuscript bool, rocDir string) error {
	if !staged {
		stagedTruth, truthCleanup, err := staging.Stage(truthDir, false)
		if err != nil {
			return err
		}
		defer truthCleanup()
		truthDir = stagedTruth

		stagedSub, subCleanup, err := staging.Stage(subDir, true)
		if err != nil {
			return err
		}
		defer subCleanup()
		subDir = stagedSub
	}

	if requireManuscript {
		if err := staging.EnsureManuscript(subDir); err != nil {
			return err
		}
	}

	var scores []score.Record
	var err error
	switch task {
	case "segmentation":
		scores, err = segmentation.Score(truthDir, subDir, cfg)
	case "classification":
		scores, err = scoreClassification(truthDir, subDir, cfg, rocDir)
	default:
		return fmt.Errorf("unknown task %q: want segmentation or classification", task)
	}
	if err != nil {
		return err
	}

	return emit(task, scores)
}

func scoreClassification(truthDir, subDir string, cfg config.Scoring, rocDir string) ([]score.Record, error) {
	truthPath, err := findTruthCSV(truthDir)
	if err != nil {
		return nil, err
	}
	subPath, err := findSubmissionCSV(subDir)
	if err != nil {
		return nil, err
	}

	truth, err := parseCSVFile(truthPath, cfg)
	if err != nil {
		return nil, err
	}
	pred, err := parseCSVFile(subPath, cfg)
	if err != nil {
		return nil, err
	}

	truth.Exclude(cfg.ExcludedImages)
	pred.Exclude(cfg.ExcludedImages)

	if err := tabular.Align(truth, pred); err != nil {
		return nil, err
	}

	if rocDir != "" {
		if err := rocplot.RenderAll(rocDir, classification.Curves(truth, pred, cfg)); err != nil {
			return nil, err
		}
	}

	return classification.Score(truth, pred, cfg), nil
}

// findTruthCSV locates the single "ISIC*GroundTruth.csv" file in the staged
// truth directory.
func findTruthCSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read ground truth directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && truthCSVPattern.MatchString(entry.Name()) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", score.Errorf(score.KindSubmission, "ground truth file could not be found in %s", dir)
}

// findSubmissionCSV locates the single .csv file in the staged submission
// directory.
func findSubmissionCSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read submission directory: %w", err)
	}
	var csvs []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			csvs = append(csvs, entry.Name())
		}
	}
	if len(csvs) > 1 {
		return "", score.Errorf(score.KindSubmission,
			"multiple prediction files submitted; exactly one CSV file should be submitted")
	}
	if len(csvs) < 1 {
		return "", score.Errorf(score.KindSubmission,
			"no prediction files submitted; exactly one CSV file should be submitted")
	}
	return filepath.Join(dir, csvs[0]), nil
}

func parseCSVFile(path string, cfg config.Scoring) (*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return tabular.ParseCSV(f, cfg)
}

func emit(task string, scores []score.Record) error {
	out, err := json.Marshal(result{
		RunID:       uuid.NewString(),
		Task:        task,
		GeneratedAt: time.Now().UTC(),
		Scores:      scores,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize scores: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
