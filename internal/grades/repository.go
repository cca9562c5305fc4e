package grades

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/pkg/query"
	"github.com/JaimeStill/examiner/pkg/repository"
)

// System defines the public contract for grade boundary reference data.
type System interface {
	Store
	Handler() *Handler
	Resolver() *Resolver

	Find(ctx context.Context, id uuid.UUID) (*Entry, error)
	Create(ctx context.Context, cmd CreateCommand) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCommand carries a new boundary entry.
type CreateCommand struct {
	Board       string `json:"board"`
	Series      string `json:"series"`
	Subject     string `json:"subject"`
	SubjectCode string `json:"subject_code"`
	Tiers       []Tier `json:"tiers"`
}

type repo struct {
	db       *sql.DB
	logger   *slog.Logger
	resolver *Resolver
}

// New creates a Postgres-backed boundary store implementing System.
func New(db *sql.DB, logger *slog.Logger) System {
	r := &repo{
		db:     db,
		logger: logger.With("system", "grade-boundaries"),
	}
	r.resolver = NewResolver(r, logger)
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Resolver() *Resolver {
	return r.resolver
}

// QueryByBoardAndSeries returns the entries of a board and series, matched
// case-insensitively. An empty series matches every series.
func (r *repo) QueryByBoardAndSeries(ctx context.Context, board, series string) ([]Entry, error) {
	q, args := query.
		NewBuilder(projection, defaultSort...).
		WhereEqualsFold("Board", &board).
		WhereEqualsFold("Series", &series).
		Build()

	entries, err := repository.QueryMany(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query grade boundaries: %w", err)
	}
	return entries, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Entry, error) {
	if strings.TrimSpace(cmd.Board) == "" || strings.TrimSpace(cmd.Series) == "" {
		return nil, fmt.Errorf("%w: board and series are required", ErrInvalidEntry)
	}
	if len(cmd.Tiers) == 0 {
		return nil, fmt.Errorf("%w: at least one tier is required", ErrInvalidEntry)
	}
	for _, t := range cmd.Tiers {
		if len(t.PaperBoundaries) == 0 && len(t.OverallBoundaries) == 0 {
			return nil, fmt.Errorf("%w: tier %q has no boundaries", ErrInvalidEntry, t.Name)
		}
	}

	tiers, err := json.Marshal(cmd.Tiers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	q := `
		INSERT INTO grade_boundaries(board, series, subject, subject_code, tiers)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projection.Returning()

	args := []any{cmd.Board, cmd.Series, cmd.Subject, cmd.SubjectCode, tiers}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return repository.QueryOne(ctx, tx, q, args, scanEntry)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("grade boundaries created", "id", e.ID, "board", e.Board, "series", e.Series, "subject", e.Subject)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM grade_boundaries WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("grade boundaries deleted", "id", id)
	return nil
}
