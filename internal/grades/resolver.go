// Package grades resolves a marked score to a grade using exam board
// boundary tables.
//
// Resolution is best-effort. Every failure produces a Resolution with a nil
// Grade and a reason instead of an error.
package grades

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Store reads boundary entries for an exam board and series.
type Store interface {
	QueryByBoardAndSeries(ctx context.Context, board, series string) ([]Entry, error)
}

// Request identifies the paper a score belongs to.
type Request struct {
	Board      string `json:"board"`
	Series     string `json:"series"`
	Subject    string `json:"subject"`
	PaperCode  string `json:"paper_code"`
	Tier       string `json:"tier"`
	Score      int    `json:"score"`
	TotalMarks int    `json:"total_marks"`
}

// Resolution is the outcome of a grade lookup.
type Resolution struct {
	Grade        *string      `json:"grade"`
	BoundaryType BoundaryType `json:"boundary_type,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

// Resolver maps scores to grades.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a Resolver reading boundaries from store.
func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With("system", "grades"),
	}
}

// Resolve finds the boundary entry and tier for req, picks the boundary
// table, and returns the highest grade the score reaches.
func (r *Resolver) Resolve(ctx context.Context, req Request) Resolution {
	if r.store == nil {
		return ungraded("no boundary store configured")
	}
	if req.Board == "" || req.Series == "" {
		return ungraded("paper board and series unknown")
	}

	entries, err := r.store.QueryByBoardAndSeries(ctx, req.Board, req.Series)
	if err != nil {
		r.logger.WarnContext(ctx, "boundary lookup failed", "board", req.Board, "series", req.Series, "error", err)
		return ungraded(fmt.Sprintf("boundary lookup failed: %v", err))
	}
	if len(entries) == 0 {
		return ungraded(fmt.Sprintf("no boundaries for %s %s", req.Board, req.Series))
	}

	entry, ok := SelectEntry(entries, req.Subject, req.PaperCode)
	if !ok {
		return ungraded(fmt.Sprintf("no boundaries for subject %q", req.Subject))
	}

	tier, ok := SelectTier(entry, req.Tier)
	if !ok {
		return ungraded(fmt.Sprintf("no %q tier in %s boundaries", req.Tier, entry.Subject))
	}

	bt, table := SelectTable(tier, req.TotalMarks)
	if len(table) == 0 {
		return ungraded(fmt.Sprintf("tier %s has no boundary tables", tier.Name))
	}

	grade := HighestGrade(table, req.Score)
	res := Resolution{Grade: grade, BoundaryType: bt}
	if grade == nil {
		res.Reason = "score is below every boundary"
	}

	r.logger.InfoContext(
		ctx, "grade resolved",
		"subject", entry.Subject,
		"tier", tier.Name,
		"boundary_type", bt,
		"score", req.Score,
		"graded", grade != nil,
	)

	return res
}

func ungraded(reason string) Resolution {
	return Resolution{Reason: reason}
}

// SelectEntry picks the entry whose normalized subject name or subject code
// matches. A single entry is used when no subject information is given.
func SelectEntry(entries []Entry, subject, paperCode string) (Entry, bool) {
	want := NormalizeSubject(subject)
	if want != "" {
		for _, e := range entries {
			if NormalizeSubject(e.Subject) == want {
				return e, true
			}
		}
	}

	if code := SubjectCode(paperCode); code != "" {
		for _, e := range entries {
			if strings.EqualFold(e.SubjectCode, code) {
				return e, true
			}
		}
	}

	if want == "" && paperCode == "" && len(entries) == 1 {
		return entries[0], true
	}
	return Entry{}, false
}

// SelectTier picks the tier with a matching normalized name. An entry with a
// single tier matches an unspecified tier.
func SelectTier(entry Entry, name string) (Tier, bool) {
	want := NormalizeTier(name)
	for _, t := range entry.Tiers {
		if NormalizeTier(t.Name) == want {
			return t, true
		}
	}
	if want == "" && len(entry.Tiers) == 1 {
		return entry.Tiers[0], true
	}
	return Tier{}, false
}

// SelectTable chooses between a tier's paper and overall tables. A total
// below 100 marks looks like a single paper, which never gets an aggregate
// table when a paper table exists.
func SelectTable(tier Tier, totalMarks int) (BoundaryType, Table) {
	hasPaper := len(tier.PaperBoundaries) > 0
	hasOverall := len(tier.OverallBoundaries) > 0
	singlePaper := totalMarks > 0 && totalMarks < 100

	choice := BoundaryOverall
	if tier.BoundaryType == BoundaryPaper || (hasPaper && hasOverall && singlePaper) {
		choice = BoundaryPaper
	}
	if choice == BoundaryOverall && (!hasOverall || (singlePaper && hasPaper)) {
		choice = BoundaryPaper
	}
	if choice == BoundaryPaper && !hasPaper {
		choice = BoundaryOverall
	}

	if choice == BoundaryPaper {
		return BoundaryPaper, tier.PaperBoundaries
	}
	return BoundaryOverall, tier.OverallBoundaries
}
