package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/examiner/internal/grades"
	"github.com/JaimeStill/examiner/internal/matching"
	"github.com/JaimeStill/examiner/internal/schemes"
	"github.com/JaimeStill/examiner/pkg/pagination"
)

// seedFile is the corpus import format.
type seedFile struct {
	Questions       []schemes.CreateCommand `json:"questions"`
	GradeBoundaries []grades.CreateCommand  `json:"grade_boundaries"`
}

type seedCounts struct {
	questions  int
	boundaries int
}

func readSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(seed.Questions) == 0 && len(seed.GradeBoundaries) == 0 {
		return nil, fmt.Errorf("%s contains no questions or grade boundaries", path)
	}
	return &seed, nil
}

// seedCorpus inserts every record of the seed file through the domain
// systems so stored schemes pass the same validation as API writes.
func seedCorpus(dsn, path string) (seedCounts, error) {
	var counts seedCounts

	seed, err := readSeed(path)
	if err != nil {
		return counts, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return counts, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var matchingCfg matching.Config
	if err := matchingCfg.Finalize(nil); err != nil {
		return counts, err
	}

	questions := schemes.New(db, matching.New(matchingCfg), logger, pagination.Config{})
	for i, cmd := range seed.Questions {
		if _, err := questions.Create(ctx, cmd); err != nil {
			return counts, fmt.Errorf("question %d (%s %s): %w", i, cmd.PaperTitle, cmd.QuestionNumber, err)
		}
		counts.questions++
	}

	boundaries := grades.New(db, logger)
	for i, cmd := range seed.GradeBoundaries {
		if _, err := boundaries.Create(ctx, cmd); err != nil {
			return counts, fmt.Errorf("grade boundaries %d (%s %s): %w", i, cmd.Board, cmd.Series, err)
		}
		counts.boundaries++
	}

	return counts, nil
}
