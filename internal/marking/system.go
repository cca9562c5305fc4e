package marking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// System marks submissions and exposes the marking endpoint.
type System interface {
	Handler(maxUploadSize int64) *Handler
	Mark(ctx context.Context, sub Submission) (*Outcome, error)
	MaxPages() int
}

type system struct {
	rt     *Runtime
	cfg    Config
	logger *slog.Logger
}

// New creates the marking system from a runtime and a finalized Config.
func New(rt *Runtime, cfg Config) System {
	return &system{
		rt:     rt,
		cfg:    cfg,
		logger: rt.Logger,
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

func (s *system) MaxPages() int {
	return s.cfg.MaxPages
}

// Mark runs the pipeline. Cancellation follows ctx; a deadline is only added
// when a timeout is configured. A submission without an id is assigned one.
func (s *system) Mark(ctx context.Context, sub Submission) (*Outcome, error) {
	if len(sub.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidSubmission)
	}
	if len(sub.Pages) > s.cfg.MaxPages {
		return nil, fmt.Errorf("%w: %d pages, limit %d", ErrTooManyPages, len(sub.Pages), s.cfg.MaxPages)
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	if d := s.cfg.TimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	s.logger.InfoContext(ctx, "marking submission", "submission_id", sub.ID, "pages", len(sub.Pages))

	outcome, err := Execute(ctx, s.rt, sub)
	if err != nil {
		s.logger.ErrorContext(ctx, "marking failed", "submission_id", sub.ID, "error", err)
		return nil, err
	}
	return outcome, nil
}
