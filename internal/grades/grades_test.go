package grades_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/examiner/internal/grades"
)

type fakeStore struct {
	entries []grades.Entry
	err     error
	calls   int
}

func (s *fakeStore) QueryByBoardAndSeries(_ context.Context, _, _ string) ([]grades.Entry, error) {
	s.calls++
	return s.entries, s.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gradeOf(g *string) string {
	if g == nil {
		return "<nil>"
	}
	return *g
}

var maths = grades.Entry{
	Board:       "AQA",
	Series:      "June 2023",
	Subject:     "GCSE Mathematics",
	SubjectCode: "8300",
	Tiers: []grades.Tier{
		{
			Name:              "Higher Tier",
			PaperBoundaries:   grades.Table{"9": 70, "8": 60, "7": 50},
			OverallBoundaries: grades.Table{"9": 214, "8": 180, "7": 147},
		},
		{
			Name:              "Foundation",
			BoundaryType:      grades.BoundaryOverall,
			OverallBoundaries: grades.Table{"5": 176, "4": 138},
		},
	},
}

func TestHighestGrade(t *testing.T) {
	numeric := grades.Table{"9": 70, "8": 60, "7": 50}
	letters := grades.Table{"A*": 80, "A": 70, "B": 60}

	tests := []struct {
		name  string
		table grades.Table
		score int
		want  string
	}{
		{"between boundaries", numeric, 65, "8"},
		{"on a boundary", numeric, 70, "9"},
		{"below every boundary", numeric, 45, "<nil>"},
		{"letter grades by boundary", letters, 75, "A"},
		{"top letter grade", letters, 95, "A*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gradeOf(grades.HighestGrade(tt.table, tt.score)); got != tt.want {
				t.Errorf("HighestGrade = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalization(t *testing.T) {
	if got := grades.NormalizeTier("Higher Tier"); got != "higher" {
		t.Errorf("NormalizeTier = %q", got)
	}
	if got := grades.NormalizeTier("FOUNDATION"); got != "foundation" {
		t.Errorf("NormalizeTier = %q", got)
	}
	if got := grades.NormalizeSubject("GCSE Mathematics (9-1)"); got != "mathematics 9 1" {
		t.Errorf("NormalizeSubject = %q", got)
	}
	if got := grades.SubjectCode("8300/1h"); got != "8300" {
		t.Errorf("SubjectCode = %q", got)
	}
}

func TestSelectTable(t *testing.T) {
	tests := []struct {
		name  string
		tier  grades.Tier
		total int
		want  grades.BoundaryType
	}{
		{"single paper prefers paper", maths.Tiers[0], 80, grades.BoundaryPaper},
		{"aggregate total prefers overall", maths.Tiers[0], 240, grades.BoundaryOverall},
		{"unknown total prefers overall", maths.Tiers[0], 0, grades.BoundaryOverall},
		{"declared paper", grades.Tier{BoundaryType: grades.BoundaryPaper, PaperBoundaries: grades.Table{"9": 1}, OverallBoundaries: grades.Table{"9": 2}}, 240, grades.BoundaryPaper},
		{"declared overall falls back for single paper", grades.Tier{BoundaryType: grades.BoundaryOverall, PaperBoundaries: grades.Table{"9": 1}, OverallBoundaries: grades.Table{"9": 2}}, 80, grades.BoundaryPaper},
		{"only overall", maths.Tiers[1], 80, grades.BoundaryOverall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := grades.SelectTable(tt.tier, tt.total); got != tt.want {
				t.Errorf("SelectTable = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		store  *fakeStore
		req    grades.Request
		grade  string
		bt     grades.BoundaryType
		reason bool
	}{
		{
			name:  "paper grade by subject name",
			store: &fakeStore{entries: []grades.Entry{maths}},
			req:   grades.Request{Board: "aqa", Series: "june 2023", Subject: "Mathematics", Tier: "higher", Score: 65, TotalMarks: 80},
			grade: "8",
			bt:    grades.BoundaryPaper,
		},
		{
			name:   "ungraded below boundaries",
			store:  &fakeStore{entries: []grades.Entry{maths}},
			req:    grades.Request{Board: "aqa", Series: "june 2023", PaperCode: "8300/1H", Tier: "Higher", Score: 45, TotalMarks: 80},
			grade:  "<nil>",
			bt:     grades.BoundaryPaper,
			reason: true,
		},
		{
			name:  "overall for aggregate totals",
			store: &fakeStore{entries: []grades.Entry{maths}},
			req:   grades.Request{Board: "aqa", Series: "june 2023", PaperCode: "8300/2H", Tier: "Higher Tier", Score: 190, TotalMarks: 240},
			grade: "8",
			bt:    grades.BoundaryOverall,
		},
		{
			name:   "store failure",
			store:  &fakeStore{err: errors.New("connection refused")},
			req:    grades.Request{Board: "aqa", Series: "june 2023", Score: 65},
			grade:  "<nil>",
			reason: true,
		},
		{
			name:   "unknown subject",
			store:  &fakeStore{entries: []grades.Entry{maths}},
			req:    grades.Request{Board: "aqa", Series: "june 2023", Subject: "Physics", Score: 65},
			grade:  "<nil>",
			reason: true,
		},
		{
			name:   "unknown tier",
			store:  &fakeStore{entries: []grades.Entry{maths}},
			req:    grades.Request{Board: "aqa", Series: "june 2023", Subject: "maths", PaperCode: "8300/1F", Tier: "Intermediate", Score: 65},
			grade:  "<nil>",
			reason: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grades.NewResolver(tt.store, discard()).Resolve(context.Background(), tt.req)
			if got := gradeOf(res.Grade); got != tt.grade {
				t.Errorf("grade = %s, want %s", got, tt.grade)
			}
			if res.BoundaryType != tt.bt {
				t.Errorf("boundary type = %q, want %q", res.BoundaryType, tt.bt)
			}
			if (res.Reason != "") != tt.reason {
				t.Errorf("reason = %q", res.Reason)
			}
		})
	}

	t.Run("missing paper skips the store", func(t *testing.T) {
		store := &fakeStore{entries: []grades.Entry{maths}}
		res := grades.NewResolver(store, discard()).Resolve(context.Background(), grades.Request{Score: 65})
		if res.Grade != nil || store.calls != 0 {
			t.Errorf("res = %+v, calls = %d", res, store.calls)
		}
	})
}
