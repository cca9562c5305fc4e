package schemes_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/examiner/internal/schemes"
)

var (
	paperX = schemes.Paper{Title: "Paper X", Board: "AQA", PaperCode: "8300/1H", Series: "June 2023", Tier: "Higher"}
	paperY = schemes.Paper{Title: "Paper Y", Board: "Edexcel", PaperCode: "1MA1/2F", Series: "November 2022", Tier: "Foundation"}
)

type lookupFunc func(text string, hint *schemes.PaperHint) (schemes.DetectionResult, error)

type fakeCorpus struct {
	mu     sync.Mutex
	lookup lookupFunc
	hints  []*schemes.PaperHint
}

func (c *fakeCorpus) FindCandidates(_ context.Context, text string, hint *schemes.PaperHint) (schemes.DetectionResult, error) {
	c.mu.Lock()
	c.hints = append(c.hints, hint)
	c.mu.Unlock()
	return c.lookup(text, hint)
}

func found(p schemes.Paper, question string) schemes.DetectionResult {
	f, err := schemes.ParseFragment("", []byte(`[{"code":"M1","criterion":"correct method"},{"code":"A1","criterion":"correct answer"}]`))
	if err != nil {
		panic(err)
	}
	return schemes.DetectionResult{
		Found: true,
		Match: &schemes.Match{
			Paper:          p,
			QuestionNumber: question,
			Fragments:      []schemes.Fragment{f},
			Confidence:     0.8,
		},
	}
}

func newOrchestrator(t *testing.T, corpus schemes.Corpus) *schemes.Orchestrator {
	t.Helper()
	var cfg schemes.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return schemes.NewOrchestrator(corpus, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sixQuestions() []schemes.Question {
	qs := make([]schemes.Question, 0, 6)
	for _, label := range []string{"1", "2", "3", "4", "5", "6"} {
		qs = append(qs, schemes.Question{Label: label, Text: "question " + label})
	}
	return qs
}

func TestConsensusRescue(t *testing.T) {
	tests := []struct {
		name        string
		dissent     lookupFunc
		wantRescued bool
		wantPaper   schemes.Paper
	}{
		{
			name: "dissenting paper re-queried toward dominant",
			dissent: func(_ string, hint *schemes.PaperHint) (schemes.DetectionResult, error) {
				if hint != nil && hint.Title == paperX.Title {
					return found(paperX, "6"), nil
				}
				return found(paperY, "6"), nil
			},
			wantRescued: true,
			wantPaper:   paperX,
		},
		{
			name: "undetected question rescued",
			dissent: func(_ string, hint *schemes.PaperHint) (schemes.DetectionResult, error) {
				if hint != nil && hint.Title == paperX.Title {
					return found(paperX, "6"), nil
				}
				return schemes.DetectionResult{}, nil
			},
			wantRescued: true,
			wantPaper:   paperX,
		},
		{
			name: "rescue landing elsewhere is rejected",
			dissent: func(_ string, _ *schemes.PaperHint) (schemes.DetectionResult, error) {
				return found(paperY, "6"), nil
			},
			wantRescued: false,
			wantPaper:   paperY,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := &fakeCorpus{lookup: func(text string, hint *schemes.PaperHint) (schemes.DetectionResult, error) {
				if text == "question 6" {
					return tt.dissent(text, hint)
				}
				return found(paperX, strings.TrimPrefix(text, "question ")), nil
			}}

			report, err := newOrchestrator(t, corpus).Resolve(context.Background(), sixQuestions(), "", nil)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}

			if report.Dominant == nil || report.Dominant.Title != paperX.Title {
				t.Fatalf("Dominant = %+v, want Paper X", report.Dominant)
			}

			last := report.Resolutions[5]
			if last.Rescued != tt.wantRescued {
				t.Errorf("Rescued = %v, want %v", last.Rescued, tt.wantRescued)
			}
			if last.Scheme.Paper.Title != tt.wantPaper.Title {
				t.Errorf("paper = %q, want %q", last.Scheme.Paper.Title, tt.wantPaper.Title)
			}

			for i, r := range report.Resolutions[:5] {
				if r.Rescued {
					t.Errorf("resolution %d rescued unexpectedly", i)
				}
			}
		})
	}
}

func TestNoConsensusBelowRatio(t *testing.T) {
	corpus := &fakeCorpus{lookup: func(text string, _ *schemes.PaperHint) (schemes.DetectionResult, error) {
		switch text {
		case "question 1", "question 2", "question 3", "question 4":
			return found(paperX, "1"), nil
		default:
			return found(paperY, "5"), nil
		}
	}}

	report, err := newOrchestrator(t, corpus).Resolve(context.Background(), sixQuestions(), "", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if report.Dominant != nil {
		t.Errorf("Dominant = %+v, want none at 4 of 6", report.Dominant)
	}
	if len(corpus.hints) != 6 {
		t.Errorf("corpus calls = %d, want 6", len(corpus.hints))
	}
}

func TestHintRestart(t *testing.T) {
	hint := &schemes.PaperHint{Title: paperY.Title}

	corpus := &fakeCorpus{lookup: func(text string, h *schemes.PaperHint) (schemes.DetectionResult, error) {
		if h != nil && h.Title == paperY.Title {
			if text == "question 1" {
				return found(paperY, "1"), nil
			}
			return schemes.DetectionResult{}, nil
		}
		return found(paperX, strings.TrimPrefix(text, "question ")), nil
	}}

	questions := sixQuestions()[:4]
	report, err := newOrchestrator(t, corpus).Resolve(context.Background(), questions, "", hint)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !report.Restarted {
		t.Error("expected restart without hint")
	}
	for i, r := range report.Resolutions {
		if r.Scheme.Paper.Title != paperX.Title {
			t.Errorf("resolution %d paper = %q, want Paper X", i, r.Scheme.Paper.Title)
		}
	}

	unhinted := 0
	for _, h := range corpus.hints {
		if h == nil {
			unhinted++
		}
	}
	if unhinted != 4 {
		t.Errorf("unhinted calls = %d, want 4", unhinted)
	}
}

func TestHintKeptWhenAdhered(t *testing.T) {
	hint := paperX.Hint()
	corpus := &fakeCorpus{lookup: func(text string, _ *schemes.PaperHint) (schemes.DetectionResult, error) {
		return found(paperX, strings.TrimPrefix(text, "question ")), nil
	}}

	report, err := newOrchestrator(t, corpus).Resolve(context.Background(), sixQuestions(), "", hint)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if report.Restarted {
		t.Error("unexpected restart")
	}
	if len(corpus.hints) != 6 {
		t.Errorf("corpus calls = %d, want 6", len(corpus.hints))
	}
}

func TestGenericFallback(t *testing.T) {
	corpus := &fakeCorpus{lookup: func(string, *schemes.PaperHint) (schemes.DetectionResult, error) {
		return schemes.DetectionResult{}, nil
	}}

	questions := []schemes.Question{
		{Label: "7a", Text: "Work out 3/4 of 36"},
		{Label: "7b", Text: "Give your answer as a fraction\n(Total 4 marks)"},
	}
	page := "7 (a) Work out 3/4 of 36\n(b) Give your answer as a fraction\n(Total 4 marks)"

	report, err := newOrchestrator(t, corpus).Resolve(context.Background(), questions, page, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(report.Schemes) != 1 {
		t.Fatalf("schemes = %d, want 1", len(report.Schemes))
	}
	s := report.Schemes[0]
	if !s.IsGeneric || s.Instruction != schemes.PermissiveInstruction {
		t.Errorf("scheme not generic: %+v", s)
	}
	if s.TotalMarks != 4 {
		t.Errorf("TotalMarks = %d, want 4", s.TotalMarks)
	}
	if got := len(s.Marks); got != 15 {
		t.Errorf("marks = %d, want 15 (4 slots per type plus zero codes)", got)
	}
}

func TestGenericTotalsPerQuestion(t *testing.T) {
	corpus := &fakeCorpus{lookup: func(string, *schemes.PaperHint) (schemes.DetectionResult, error) {
		return schemes.DetectionResult{}, nil
	}}

	questions := []schemes.Question{
		{Label: "1a", Text: "1 (a) Expand 3(x + 2) (2)"},
		{Label: "1b", Text: "(b) Factorise x^2 + 5x (2)"},
		{Label: "2a", Text: "2 (a) Solve 2x = 8 (1)"},
	}
	page := questions[0].Text + "\n" + questions[1].Text + "\n" + questions[2].Text

	report, err := newOrchestrator(t, corpus).Resolve(context.Background(), questions, page, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	totals := map[string]int{}
	for _, res := range report.Resolutions {
		totals[res.Group.Base] = res.Scheme.TotalMarks
	}
	if totals["1"] != 4 || totals["2"] != 1 {
		t.Errorf("totals = %v, want 1:4 2:1", totals)
	}
}

func TestCorpusErrorIsMiss(t *testing.T) {
	corpus := &fakeCorpus{lookup: func(string, *schemes.PaperHint) (schemes.DetectionResult, error) {
		return schemes.DetectionResult{}, errors.New("connection reset")
	}}

	report, err := newOrchestrator(t, corpus).Resolve(
		context.Background(),
		[]schemes.Question{{Label: "2", Text: "Solve x + 3 = 7"}},
		"",
		nil,
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !report.Schemes[0].IsGeneric || report.Schemes[0].TotalMarks != 20 {
		t.Errorf("scheme = %+v, want default generic", report.Schemes[0])
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	corpus := &fakeCorpus{lookup: func(string, *schemes.PaperHint) (schemes.DetectionResult, error) {
		return schemes.DetectionResult{}, context.Canceled
	}}

	_, err := newOrchestrator(t, corpus).Resolve(ctx, sixQuestions(), "", nil)
	if !errors.Is(err, schemes.ErrCorpusFailed) {
		t.Errorf("err = %v, want ErrCorpusFailed", err)
	}
}
