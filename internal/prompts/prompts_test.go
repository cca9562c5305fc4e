package prompts_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/examiner/internal/prompts"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"duplicate", prompts.ErrDuplicate, http.StatusConflict},
		{"wrapped invalid stage", fmt.Errorf("decode: %w", prompts.ErrInvalidStage), http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		input string
		want  prompts.Stage
		err   bool
	}{
		{"mark", prompts.StageMark, false},
		{"mark-generic", prompts.StageMarkGeneric, false},
		{"math", prompts.StageMath, false},
		{"classify", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := prompts.ParseStage(tt.input)
			if (err != nil) != tt.err {
				t.Fatalf("ParseStage(%q) error = %v", tt.input, err)
			}
			if err != nil && !errors.Is(err, prompts.ErrInvalidStage) {
				t.Errorf("error = %v, want ErrInvalidStage", err)
			}
			if got != tt.want {
				t.Errorf("ParseStage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStageUnmarshalJSON(t *testing.T) {
	type payload struct {
		Stage prompts.Stage `json:"stage"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"stage":"mark-generic"}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Stage != prompts.StageMarkGeneric {
		t.Errorf("Stage = %q", p.Stage)
	}

	err := json.Unmarshal([]byte(`{"stage":"enhance"}`), &p)
	if !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Unmarshal(enhance) error = %v, want ErrInvalidStage", err)
	}

	if err := json.Unmarshal([]byte(`{"stage":42}`), &p); err == nil {
		t.Error("Unmarshal(42) should fail")
	}
}

func TestDefaults(t *testing.T) {
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			inst, err := prompts.Instructions(stage)
			if err != nil || inst == "" {
				t.Fatalf("Instructions = %q, %v", inst, err)
			}
			spec, err := prompts.Spec(stage)
			if err != nil || !strings.Contains(spec, "JSON") {
				t.Fatalf("Spec = %q, %v", spec, err)
			}

			composed := prompts.Compose(inst, spec)
			if !strings.HasPrefix(composed, inst) || !strings.HasSuffix(composed, spec) {
				t.Error("Compose must keep instructions before spec")
			}
		})
	}

	if _, err := prompts.Instructions("banana"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Instructions(banana) error = %v", err)
	}
	if _, err := prompts.Spec("banana"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Spec(banana) error = %v", err)
	}
}

func TestMarkSpecNamesParsedFields(t *testing.T) {
	spec, _ := prompts.Spec(prompts.StageMark)
	for _, field := range []string{"line_id", "action", "bbox", "page_index", "sub_question", "total_marks", "is_estimate"} {
		if !strings.Contains(spec, field) {
			t.Errorf("mark spec missing %q", field)
		}
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		stage  *prompts.Stage
		active *bool
	}{
		{"all params", url.Values{"stage": {"math"}, "name": {"latex"}, "active": {"true"}}, ptr(prompts.StageMath), ptr(true)},
		{"empty", url.Values{}, nil, nil},
		{"invalid active ignored", url.Values{"active": {"maybe"}}, nil, nil},
		{"active false", url.Values{"active": {"false"}}, nil, ptr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := prompts.FiltersFromQuery(tt.values)
			if (f.Stage == nil) != (tt.stage == nil) || (f.Stage != nil && *f.Stage != *tt.stage) {
				t.Errorf("Stage = %v", f.Stage)
			}
			if (f.Active == nil) != (tt.active == nil) || (f.Active != nil && *f.Active != *tt.active) {
				t.Errorf("Active = %v", f.Active)
			}
		})
	}
}
