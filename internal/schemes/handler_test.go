package schemes_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/internal/schemes"
	"github.com/JaimeStill/examiner/pkg/pagination"
	"github.com/JaimeStill/examiner/pkg/routes"
)

type mockCorpus struct {
	record   schemes.Record
	filters  schemes.Filters
	detected *schemes.PaperHint
}

func (m *mockCorpus) Handler() *schemes.Handler {
	return schemes.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (m *mockCorpus) FindCandidates(_ context.Context, text string, hint *schemes.PaperHint) (schemes.DetectionResult, error) {
	m.detected = hint
	if !strings.Contains(text, "angle") {
		return schemes.DetectionResult{}, nil
	}
	return schemes.DetectionResult{Found: true, Match: &schemes.Match{
		Paper:          m.record.Paper(),
		QuestionNumber: m.record.QuestionNumber,
		QuestionText:   m.record.QuestionText,
		Confidence:     0.91,
	}}, nil
}

func (m *mockCorpus) List(_ context.Context, page pagination.PageRequest, f schemes.Filters) (*pagination.PageResult[schemes.Record], error) {
	m.filters = f
	res := pagination.NewPageResult([]schemes.Record{m.record}, 1, page.Page, page.PageSize)
	return &res, nil
}

func (m *mockCorpus) Find(_ context.Context, id uuid.UUID) (*schemes.Record, error) {
	if id != m.record.ID {
		return nil, schemes.ErrNotFound
	}
	return &m.record, nil
}

func (m *mockCorpus) Create(_ context.Context, cmd schemes.CreateCommand) (*schemes.Record, error) {
	if cmd.QuestionText == "" {
		return nil, schemes.ErrInvalidScheme
	}
	if cmd.QuestionNumber == m.record.QuestionNumber {
		return nil, schemes.ErrDuplicate
	}
	rec := m.record
	rec.QuestionNumber = cmd.QuestionNumber
	return &rec, nil
}

func (m *mockCorpus) Delete(_ context.Context, id uuid.UUID) error {
	if id != m.record.ID {
		return schemes.ErrNotFound
	}
	return nil
}

func TestHandler(t *testing.T) {
	sys := &mockCorpus{record: schemes.Record{
		ID:             uuid.MustParse("9b2f4c1e-3d5a-4e8b-a6c7-1f0e2d3c4b5a"),
		Board:          "AQA",
		PaperTitle:     "Paper 1 Higher",
		QuestionNumber: "4",
		QuestionText:   "Work out the size of angle x.",
		TotalMarks:     3,
	}}

	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"list", "GET", "/questions?board=AQA&paper_title=Paper+1", "", http.StatusOK, `"question_number":"4"`},
		{"find", "GET", "/questions/" + sys.record.ID.String(), "", http.StatusOK, `"total_marks":3`},
		{"find bad id", "GET", "/questions/q4", "", http.StatusBadRequest, "invalid id"},
		{"find missing", "GET", "/questions/" + uuid.NewString(), "", http.StatusNotFound, "question not found"},
		{"create", "POST", "/questions", `{"question_number":"5","question_text":"Expand (x+2)(x-3)."}`, http.StatusCreated, `"question_number":"5"`},
		{"create duplicate", "POST", "/questions", `{"question_number":"4","question_text":"again"}`, http.StatusConflict, ""},
		{"create invalid", "POST", "/questions", `{"question_number":"6"}`, http.StatusBadRequest, ""},
		{"delete", "DELETE", "/questions/" + sys.record.ID.String(), "", http.StatusNoContent, ""},
		{"detect match", "POST", "/questions/detect", `{"text":"find angle x","hint":{"board":"AQA"}}`, http.StatusOK, `"confidence":0.91`},
		{"detect miss", "POST", "/questions/detect", `{"text":"simplify"}`, http.StatusOK, `"found":false`},
		{"detect malformed", "POST", "/questions/detect", `text`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.want)
			}
		})
	}

	t.Run("list filters from query", func(t *testing.T) {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/questions?board=AQA&tier=Higher", nil))
		f := sys.filters
		if f.Board == nil || *f.Board != "AQA" || f.Tier == nil || *f.Tier != "Higher" || f.Series != nil {
			t.Errorf("filters = %+v", f)
		}
	})

	t.Run("detect passes hint", func(t *testing.T) {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/questions/detect", strings.NewReader(`{"text":"angle","hint":{"series":"June 2023"}}`)))
		if sys.detected == nil || sys.detected.Series != "June 2023" {
			t.Errorf("hint = %+v", sys.detected)
		}
	})
}
