// Package results turns untrusted marking model output into a sanitized
// annotation set and an authoritative score.
//
// The model's JSON is extracted from its fenced block, repaired when
// malformed, normalized, and then rescored from the annotations themselves.
// The model's own awarded marks are never used.
package results

import (
	"log/slog"
	"math"

	"github.com/JaimeStill/examiner/pkg/formatting"
)

// Context carries what the parser trusts about the question being marked.
type Context struct {
	SchemeTotal int
	Pages       map[string]int
}

// Result is the parsed and scored output of one marking call.
type Result struct {
	Annotations     []Annotation `json:"annotations"`
	StudentScore    StudentScore `json:"student_score"`
	ModelTotal      int          `json:"model_total,omitempty"`
	ModelIsEstimate bool         `json:"model_is_estimate,omitempty"`
	Repaired        bool         `json:"repaired,omitempty"`
	PagesCorrected  int          `json:"pages_corrected,omitempty"`
	BoxesAdjusted   int          `json:"boxes_adjusted,omitempty"`
}

// Parser parses marking model output.
type Parser struct {
	cfg    Config
	logger *slog.Logger
}

// NewParser creates a Parser. cfg is expected to be finalized.
func NewParser(cfg Config, logger *slog.Logger) *Parser {
	return &Parser{
		cfg:    cfg,
		logger: logger.With("system", "results"),
	}
}

// Parse extracts, repairs and sanitizes raw model output, reconciles pages,
// recomputes the score against the resolved budget, and normalizes marker
// boxes. It returns ErrMarkingParseFailure when no repair stage produces
// valid JSON.
func (p *Parser) Parse(raw string, c Context) (*Result, error) {
	body := formatting.ExtractJSON(raw)

	repaired, err := Repair(body)
	if err != nil {
		p.logger.Warn("marking output repair failed", "length", len(body))
		return nil, err
	}

	out, err := decode(repaired)
	if err != nil {
		return nil, err
	}

	Sanitize(out.Annotations)

	result := &Result{
		Annotations: out.Annotations,
		Repaired:    repaired != body,
	}
	if result.Annotations == nil {
		result.Annotations = []Annotation{}
	}

	result.PagesCorrected = ReconcilePages(result.Annotations, c.Pages)

	awarded := Awarded(result.Annotations)
	if out.StudentScore != nil {
		result.ModelTotal = int(math.Round(out.StudentScore.TotalMarks))
		result.ModelIsEstimate = out.StudentScore.IsEstimate
	}

	total := ResolveBudget(result.ModelTotal, result.ModelIsEstimate, c.SchemeTotal, awarded)
	result.StudentScore = NewStudentScore(Clamp(awarded, total), total)

	result.BoxesAdjusted = NormalizeBoxes(result.Annotations, p.cfg)

	p.logger.Info(
		"marking output parsed",
		"annotations", len(result.Annotations),
		"score", result.StudentScore.ScoreText,
		"repaired", result.Repaired,
		"pages_corrected", result.PagesCorrected,
	)

	if awarded > total {
		p.logger.Warn(
			"awarded marks clamped to budget",
			"awarded", awarded,
			"total", total,
		)
	}

	return result, nil
}
