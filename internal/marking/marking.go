// Package marking runs one submission through the marking pipeline as a state
// graph: page archival, recognition with math-region detection, scheme
// resolution, one model call per question group, result parsing, and grade
// resolution.
package marking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/internal/grades"
	"github.com/JaimeStill/examiner/internal/layout"
	"github.com/JaimeStill/examiner/internal/mathregion"
	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/internal/results"
	"github.com/JaimeStill/examiner/internal/schemes"
)

// Model produces raw marking output for one question group. The output is
// untrusted and is validated by the results parser.
type Model interface {
	Generate(ctx context.Context, req MarkingRequest) (string, error)
}

// Submission is one answer sheet of one or more page images.
type Submission struct {
	ID    uuid.UUID
	Pages [][]byte
	Hint  *schemes.PaperHint
}

// Line is one recognized region of student work. Box is expressed as
// fractions of the page width and height.
type Line struct {
	ID   string     `json:"id"`
	Page int        `json:"page"`
	Text string     `json:"text"`
	Box  layout.Box `json:"box"`
}

// Page is the recognition outcome of one page. Index is zero-based.
type Page struct {
	Index      int                      `json:"index"`
	StorageKey string                   `json:"storage_key,omitempty"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	Blocks     []layout.MathBlock       `json:"blocks"`
	Passes     []recognition.PassReport `json:"passes,omitempty"`
	Math       mathregion.Stats         `json:"math"`
	Degraded   bool                     `json:"degraded,omitempty"`
	Error      string                   `json:"error,omitempty"`

	data     []byte
	clusters []layout.Cluster
}

// Lines converts the page blocks to student work lines.
func (p Page) Lines() []Line {
	lines := make([]Line, 0, len(p.Blocks))
	for i, b := range p.Blocks {
		text := strings.TrimSpace(b.Text())
		if text == "" {
			continue
		}
		lines = append(lines, Line{
			ID:   fmt.Sprintf("p%d-l%d", p.Index, i+1),
			Page: p.Index,
			Text: text,
			Box:  relative(b.Box, p.Width, p.Height),
		})
	}
	return lines
}

func relative(b layout.Box, width, height int) layout.Box {
	if width <= 0 || height <= 0 {
		return layout.Box{}
	}
	w, h := float64(width), float64(height)
	return layout.Box{X: b.X / w, Y: b.Y / h, Width: b.Width / w, Height: b.Height / h}
}

// QuestionOutcome is the marking result of one question group. Error is set
// when the group could not be marked; the rest of the submission is unaffected.
type QuestionOutcome struct {
	Question     string                   `json:"question"`
	Labels       []string                 `json:"labels"`
	Scheme       schemes.NormalizedScheme `json:"scheme"`
	Annotations  []results.Annotation     `json:"annotations"`
	StudentScore results.StudentScore     `json:"student_score"`
	Repaired     bool                     `json:"repaired,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

// Marked reports whether the question produced a score.
func (q QuestionOutcome) Marked() bool {
	return q.Error == ""
}

// Outcome is the result of marking one submission.
type Outcome struct {
	SubmissionID      uuid.UUID            `json:"submission_id"`
	Annotations       []results.Annotation `json:"annotations"`
	StudentScore      results.StudentScore `json:"student_score"`
	Grade             *string              `json:"grade"`
	GradeBoundaryType grades.BoundaryType  `json:"grade_boundary_type,omitempty"`
	GradeReason       string               `json:"grade_reason,omitempty"`
	Questions         []QuestionOutcome    `json:"questions"`
	Paper             *schemes.Paper       `json:"paper,omitempty"`
	Pages             []Page               `json:"pages"`
	CompletedAt       time.Time            `json:"completed_at"`
}
