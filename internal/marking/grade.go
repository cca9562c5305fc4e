package marking

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/examiner/internal/grades"
	"github.com/JaimeStill/examiner/internal/results"
	"github.com/JaimeStill/examiner/internal/schemes"
)

const reasonNoPaper = "exam board and series unknown"

// Score sums the scores of every marked question.
func Score(questions []QuestionOutcome) results.StudentScore {
	awarded, total := 0, 0
	for _, q := range questions {
		if !q.Marked() {
			continue
		}
		awarded += q.StudentScore.AwardedMarks
		total += q.StudentScore.TotalMarks
	}
	return results.NewStudentScore(awarded, total)
}

// GradeRequest builds the grade lookup for a submission. Caller supplied
// hint fields take precedence over the resolved source paper.
func GradeRequest(hint *schemes.PaperHint, paper *schemes.Paper, score results.StudentScore) grades.Request {
	req := grades.Request{
		Score:      score.AwardedMarks,
		TotalMarks: score.TotalMarks,
	}
	if paper != nil {
		req.Board = paper.Board
		req.Series = paper.Series
		req.Subject = paper.Subject
		req.PaperCode = paper.PaperCode
		req.Tier = paper.Tier
	}
	if hint != nil {
		req.Board = prefer(hint.Board, req.Board)
		req.Series = prefer(hint.Series, req.Series)
		req.Subject = prefer(hint.Subject, req.Subject)
		req.PaperCode = prefer(hint.PaperCode, req.PaperCode)
		req.Tier = prefer(hint.Tier, req.Tier)
	}
	return req
}

func prefer(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// GradeNode returns a state node that resolves the grade of the summed
// score. Grade lookup never fails the pipeline.
func GradeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ms, err := extractState(s)
		if err != nil {
			return s, fmt.Errorf("grade: %w", err)
		}

		req := GradeRequest(ms.Hint, ms.Paper, Score(ms.Questions))
		ms.Grade = rt.Grades.Resolve(ctx, req)

		rt.Logger.InfoContext(
			ctx, "grade node complete",
			"graded", ms.Grade.Grade != nil,
			"boundary_type", ms.Grade.BoundaryType,
		)

		return s.Set(KeyState, *ms), nil
	})
}

// FinalizeNode returns a state node that records why no grade was looked up
// when the grade node was skipped.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ms, err := extractState(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		if ms.Grade.Grade == nil && ms.Grade.Reason == "" {
			ms.Grade.Reason = reasonNoPaper
		}

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"submission_id", ms.SubmissionID,
			"score", Score(ms.Questions).ScoreText,
		)

		return s.Set(KeyState, *ms), nil
	})
}

func gradeable(s state.State) bool {
	ms, err := extractState(s)
	if err != nil {
		return false
	}
	req := GradeRequest(ms.Hint, ms.Paper, results.StudentScore{})
	return req.Board != "" && req.Series != ""
}
