package marking

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/results"
	"github.com/JaimeStill/examiner/internal/schemes"
)

// MarkNode returns a state node that marks every question group with its own
// model call. Groups are marked concurrently. A model or parse failure is
// recorded on the group's outcome; the node fails only when no group could
// be marked.
func MarkNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ms, err := extractState(s)
		if err != nil {
			return s, fmt.Errorf("mark: %w", err)
		}

		requests, err := buildRequests(ctx, rt, ms)
		if err != nil {
			return s, fmt.Errorf("mark: %w", err)
		}

		ms.Questions = markGroups(ctx, rt, requests)
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("mark: %w", err)
		}
		if !ms.Marked() {
			return s, fmt.Errorf("mark: %w: every question failed", results.ErrMarkingParseFailure)
		}

		rt.Logger.InfoContext(
			ctx, "mark node complete",
			"questions", len(ms.Questions),
		)

		return s.Set(KeyState, *ms), nil
	})
}

type groupRequest struct {
	req   MarkingRequest
	pages map[string]int
}

func buildRequests(ctx context.Context, rt *Runtime, ms *MarkingState) ([]groupRequest, error) {
	composed := make(map[prompts.Stage]string)
	requests := make([]groupRequest, 0, len(ms.Report.Resolutions))

	for _, res := range ms.Report.Resolutions {
		scheme, ok := ms.Report.SchemeFor(res.Group.Base)
		if !ok {
			scheme = res.Scheme
		}

		stage := StageFor(scheme)
		if _, ok := composed[stage]; !ok {
			prompt, err := rt.Prompts.Composed(ctx, stage)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMarkFailed, err)
			}
			composed[stage] = prompt
		}

		req := MarkingRequest{
			Question:     res.Group.Base,
			Instructions: composed[stage],
			Scheme:       scheme,
		}

		var pages []int
		for _, w := range ms.Works {
			if schemes.BaseQuestion(w.Label) != res.Group.Base {
				continue
			}
			req.Labels = append(req.Labels, w.Label)
			req.Lines = append(req.Lines, w.Lines...)
			for _, l := range w.Lines {
				if !slices.Contains(pages, l.Page) {
					pages = append(pages, l.Page)
				}
			}
		}

		slices.Sort(pages)
		for _, p := range pages {
			if p >= 0 && p < len(ms.Pages) {
				req.Images = append(req.Images, ms.Pages[p].data)
			}
		}

		requests = append(requests, groupRequest{req: req, pages: res.Group.Pages()})
	}

	return requests, nil
}

func markGroups(ctx context.Context, rt *Runtime, requests []groupRequest) []QuestionOutcome {
	outcomes := make([]QuestionOutcome, len(requests))

	var g errgroup.Group
	g.SetLimit(workerCount(len(requests)))

	for i, gr := range requests {
		g.Go(func() error {
			outcomes[i] = markGroup(ctx, rt, gr)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func markGroup(ctx context.Context, rt *Runtime, gr groupRequest) QuestionOutcome {
	out := QuestionOutcome{
		Question: gr.req.Question,
		Labels:   gr.req.Labels,
		Scheme:   gr.req.Scheme,
	}

	if ctx.Err() != nil {
		out.Error = ctx.Err().Error()
		return out
	}

	raw, err := rt.Model.Generate(ctx, gr.req)
	if err != nil {
		out.Error = fmt.Errorf("%w: model call: %w", ErrMarkFailed, err).Error()
		rt.Logger.WarnContext(ctx, "marking model failed", "question", out.Question, "error", err)
		return out
	}

	parsed, err := rt.Parser.Parse(raw, results.Context{
		SchemeTotal: gr.req.Scheme.TotalMarks,
		Pages:       gr.pages,
	})
	if err != nil {
		out.Error = err.Error()
		rt.Logger.WarnContext(ctx, "marking output rejected", "question", out.Question, "error", err)
		return out
	}

	out.Annotations = parsed.Annotations
	out.StudentScore = parsed.StudentScore
	out.Repaired = parsed.Repaired
	return out
}
