package schemes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/internal/matching"
	"github.com/JaimeStill/examiner/pkg/pagination"
	"github.com/JaimeStill/examiner/pkg/query"
	"github.com/JaimeStill/examiner/pkg/repository"
)

// System defines the public contract for the question corpus.
type System interface {
	Corpus
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	Create(ctx context.Context, cmd CreateCommand) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repo struct {
	db         *sql.DB
	matcher    *matching.Matcher
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a Postgres-backed question corpus implementing System.
func New(
	db *sql.DB,
	matcher *matching.Matcher,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		matcher:    matcher,
		logger:     logger.With("system", "questions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// FindCandidates loads the questions allowed by the hint, groups them by
// paper and question number, and returns the group most similar to text.
func (r *repo) FindCandidates(ctx context.Context, text string, hint *PaperHint) (DetectionResult, error) {
	qb := query.NewBuilder(projection, defaultSort...)
	FiltersFromHint(hint).Apply(qb)

	q, args := qb.Build()
	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return DetectionResult{}, fmt.Errorf("%w: query questions: %w", ErrCorpusFailed, err)
	}

	candidates := groupRecords(records)
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.text()
	}

	idx, score := r.matcher.Best(text, texts)
	if idx < 0 {
		return DetectionResult{}, nil
	}

	c := candidates[idx]
	fragments := make([]Fragment, 0, len(c.records))
	for _, rec := range c.records {
		f, err := ParseFragment(rec.SubQuestion, rec.Scheme)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping malformed scheme", "id", rec.ID, "error", err)
			continue
		}
		if f.TotalMarks == 0 {
			f.TotalMarks = rec.TotalMarks
		}
		fragments = append(fragments, f)
	}

	first := c.records[0]
	return DetectionResult{
		Found: true,
		Match: &Match{
			Paper:          first.Paper(),
			QuestionNumber: first.QuestionNumber,
			QuestionText:   texts[idx],
			Fragments:      fragments,
			Confidence:     score.Final,
		},
	}, nil
}

type candidate struct {
	records []Record
}

func (c candidate) text() string {
	parts := make([]string, len(c.records))
	for i, rec := range c.records {
		parts[i] = rec.QuestionText
	}
	return strings.Join(parts, "\n")
}

func groupRecords(records []Record) []candidate {
	index := make(map[string]int)
	candidates := make([]candidate, 0)
	for _, rec := range records {
		key := rec.Paper().Key() + "#" + BaseQuestion(rec.QuestionNumber)
		i, ok := index[key]
		if !ok {
			i = len(candidates)
			index[key] = i
			candidates = append(candidates, candidate{})
		}
		candidates[i].records = append(candidates[i].records, rec)
	}
	return candidates
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "QuestionText", "PaperTitle")
	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	if strings.TrimSpace(cmd.QuestionText) == "" || strings.TrimSpace(cmd.QuestionNumber) == "" {
		return nil, fmt.Errorf("%w: question number and text are required", ErrInvalidScheme)
	}
	if len(cmd.Scheme) == 0 {
		cmd.Scheme = json.RawMessage("null")
	}
	if _, err := ParseFragment(cmd.SubQuestion, cmd.Scheme); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO questions(board, paper_code, series, tier, subject, paper_title,
			question_number, sub_question, question_text, scheme, total_marks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + projection.Returning()

	args := []any{
		cmd.Board,
		cmd.PaperCode,
		cmd.Series,
		cmd.Tier,
		cmd.Subject,
		cmd.PaperTitle,
		cmd.QuestionNumber,
		cmd.SubQuestion,
		cmd.QuestionText,
		[]byte(cmd.Scheme),
		cmd.TotalMarks,
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("question created", "id", rec.ID, "paper", rec.PaperTitle, "question", rec.QuestionNumber)
	return &rec, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM questions WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("question deleted", "id", id)
	return nil
}
