package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/pkg/pagination"
	"github.com/JaimeStill/examiner/pkg/query"
	"github.com/JaimeStill/examiner/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Name", "Description")
	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

// Instructions returns the active override for stage, or the hardcoded
// default when no override is active.
func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	q, args := query.
		NewBuilder(projection).
		WhereEquals("Stage", stage).
		WhereEquals("Active", true).
		BuildSingleOrNull()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Instructions(stage)
	case err != nil:
		return "", fmt.Errorf("query active %s prompt: %w", stage, err)
	}
	return p.Instructions, nil
}

// Spec returns the hardcoded output specification for stage.
func (r *repo) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

// Composed returns the full system prompt of stage: its effective
// instructions followed by its output specification.
func (r *repo) Composed(ctx context.Context, stage Stage) (string, error) {
	instructions, err := r.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}
	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}
	return Compose(instructions, spec), nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	return r.mutate(ctx, "prompt created", `
		INSERT INTO prompts(name, stage, instructions, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+projection.Returning(),
		cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description,
	)
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	return r.mutate(ctx, "prompt updated", `
		UPDATE prompts
		SET name = $1, stage = $2, instructions = $3, description = $4
		WHERE id = $5
		RETURNING `+projection.Returning(),
		cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description, id,
	)
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.mutate(ctx, "prompt deactivated", `
		UPDATE prompts SET active = false
		WHERE id = $1
		RETURNING `+projection.Returning(),
		id,
	)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM prompts WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

// Activate makes id the only active override for its stage.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		findQ, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)
		target, err := repository.QueryOne(ctx, tx, findQ, findArgs, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE prompts SET active = false WHERE stage = $1 AND active AND id <> $2",
			target.Stage, id,
		); err != nil {
			return Prompt{}, fmt.Errorf("deactivate %s overrides: %w", target.Stage, err)
		}

		return repository.QueryOne(ctx, tx,
			"UPDATE prompts SET active = true WHERE id = $1 RETURNING "+projection.Returning(),
			[]any{id}, scanPrompt,
		)
	})
	return r.logged("prompt activated", p, err)
}

// mutate runs a single RETURNING statement in a transaction.
func (r *repo) mutate(ctx context.Context, event, q string, args ...any) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	return r.logged(event, p, err)
}

func (r *repo) logged(event string, p Prompt, err error) (*Prompt, error) {
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	r.logger.Info(event, "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}
