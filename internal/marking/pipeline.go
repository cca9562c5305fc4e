package marking

import (
	"context"
	"fmt"
	"runtime"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/examiner/internal/results"
)

// Execute marks one submission. It builds the state graph
// (archive → recognize → resolve → mark → grade? → finalize), executes it,
// and assembles the Outcome from the final state.
func Execute(ctx context.Context, rt *Runtime, sub Submission) (*Outcome, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeySubmission, sub)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	ms, err := extractState(final)
	if err != nil {
		return nil, err
	}

	return ms.Outcome(), nil
}

// Outcome assembles the submission outcome from the final state.
func (ms *MarkingState) Outcome() *Outcome {
	out := &Outcome{
		SubmissionID:      ms.SubmissionID,
		Annotations:       make([]results.Annotation, 0),
		StudentScore:      Score(ms.Questions),
		Grade:             ms.Grade.Grade,
		GradeBoundaryType: ms.Grade.BoundaryType,
		GradeReason:       ms.Grade.Reason,
		Questions:         ms.Questions,
		Paper:             ms.Paper,
		Pages:             ms.Pages,
		CompletedAt:       time.Now(),
	}
	for _, q := range ms.Questions {
		out.Annotations = append(out.Annotations, q.Annotations...)
	}
	return out
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("examiner-marking")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"archive", ArchiveNode(rt)},
		{"recognize", RecognizeNode(rt)},
		{"resolve", ResolveNode(rt)},
		{"mark", MarkNode(rt)},
		{"grade", GradeNode(rt)},
		{"finalize", FinalizeNode(rt)},
	}
	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	if err := graph.AddEdge("archive", "recognize", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("recognize", "resolve", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("resolve", "mark", nil); err != nil {
		return nil, err
	}

	// mark → grade (when a board and series are known)
	if err := graph.AddEdge("mark", "grade", gradeable); err != nil {
		return nil, err
	}

	// mark → finalize (no paper to grade against)
	if err := graph.AddEdge("mark", "finalize", state.Not(gradeable)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("grade", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("archive"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
