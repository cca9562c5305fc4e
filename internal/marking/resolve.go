package marking

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/examiner/internal/schemes"
)

// ResolveNode returns a state node that resolves one marking scheme per
// question group from the detected work.
func ResolveNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ms, err := extractState(s)
		if err != nil {
			return s, fmt.Errorf("resolve: %w", err)
		}

		questions := make([]schemes.Question, len(ms.Works))
		texts := make([]string, len(ms.Works))
		for i, w := range ms.Works {
			questions[i] = w.Question()
			texts[i] = w.Text()
		}

		report, err := rt.Schemes.Resolve(ctx, questions, strings.Join(texts, "\n"), ms.Hint)
		if err != nil {
			return s, fmt.Errorf("resolve: %w: %w", ErrSchemeFailed, err)
		}

		ms.Report = report
		ms.Paper = sourcePaper(report)

		rt.Logger.InfoContext(
			ctx, "resolve node complete",
			"groups", len(report.Resolutions),
			"schemes", len(report.Schemes),
			"restarted", report.Restarted,
		)

		return s.Set(KeyState, *ms), nil
	})
}

// sourcePaper prefers the consensus paper and otherwise the paper of the
// first official scheme.
func sourcePaper(report *schemes.Report) *schemes.Paper {
	if report.Dominant != nil {
		p := *report.Dominant
		return &p
	}
	for _, sc := range report.Schemes {
		if !sc.IsGeneric {
			p := sc.Paper
			return &p
		}
	}
	return nil
}
