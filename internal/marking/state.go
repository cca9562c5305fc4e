package marking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/examiner/internal/grades"
	"github.com/JaimeStill/examiner/internal/schemes"
)

const (
	KeySubmission = "submission"
	KeyState      = "marking_state"
)

// MarkingState is carried through the graph and mutated by each node.
type MarkingState struct {
	SubmissionID uuid.UUID          `json:"submission_id"`
	Hint         *schemes.PaperHint `json:"hint,omitempty"`
	Pages        []Page             `json:"pages"`
	Works        []Work             `json:"works"`
	Report       *schemes.Report    `json:"report,omitempty"`
	Questions    []QuestionOutcome  `json:"questions"`
	Paper        *schemes.Paper     `json:"paper,omitempty"`
	Grade        grades.Resolution  `json:"grade"`
}

// Marked reports whether at least one question produced a score.
func (ms *MarkingState) Marked() bool {
	for _, q := range ms.Questions {
		if q.Marked() {
			return true
		}
	}
	return false
}

func extractState(s state.State) (*MarkingState, error) {
	val, ok := s.Get(KeyState)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyState)
	}

	ms, ok := val.(MarkingState)
	if !ok {
		return nil, fmt.Errorf("%s is not MarkingState", KeyState)
	}

	return &ms, nil
}

func extractSubmission(s state.State) (Submission, error) {
	val, ok := s.Get(KeySubmission)
	if !ok {
		return Submission{}, fmt.Errorf("%w: missing %s in state", ErrInvalidSubmission, KeySubmission)
	}

	sub, ok := val.(Submission)
	if !ok {
		return Submission{}, fmt.Errorf("%w: %s is not Submission", ErrInvalidSubmission, KeySubmission)
	}

	return sub, nil
}
