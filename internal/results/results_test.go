package results_test

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/JaimeStill/examiner/internal/results"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newParser(t *testing.T) *results.Parser {
	t.Helper()
	var cfg results.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return results.NewParser(cfg, discard())
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"valid input unchanged",
			`{"annotations": [ {"line_id": "1", "text": "M1\\n"} ]}`,
			`{"annotations": [ {"line_id": "1", "text": "M1\\n"} ]}`,
		},
		{
			"missing brace before next object",
			`{"annotations":[{"line_id":"1","text":"M1",{"line_id":"2"}]}`,
			`{"annotations":[{"line_id":"1","text":"M1"},{"line_id":"2"}]}`,
		},
		{
			"truncated output",
			`{"annotations":[{"line_id":"1"`,
			`{"annotations":[{"line_id":"1"}]}`,
		},
		{
			"lone backslash",
			`{"text":"\sqrt{2}"}`,
			`{"text":"\\sqrt{2}"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := results.Repair(tt.in)
			if err != nil {
				t.Fatalf("Repair: %v", err)
			}
			if got != tt.want {
				t.Errorf("Repair = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once, err := results.Repair(`{"a":[{"b":1`)
		if err != nil {
			t.Fatalf("Repair: %v", err)
		}
		twice, err := results.Repair(once)
		if err != nil || twice != once {
			t.Errorf("second Repair = %s, %v", twice, err)
		}
	})

	t.Run("unrepairable", func(t *testing.T) {
		if _, err := results.Repair("the student did well"); !errors.Is(err, results.ErrMarkingParseFailure) {
			t.Errorf("err = %v, want ErrMarkingParseFailure", err)
		}
	})
}

func TestDedupeZeroCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"M0 M0 A1", "M0 A1"},
		{"M1 M1", "M1 M1"},
		{"B0, B0, b0", "B0,"},
		{"A1 M0 A0 M0", "A1 M0 A0"},
		{"M0", "M0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := results.DedupeZeroCodes(tt.in); got != tt.want {
				t.Errorf("DedupeZeroCodes = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanStudentText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quotes and literal newline", `"x = 2\n"`, "x = 2"},
		{"backticks", "`3x + 1`", "3x + 1"},
		{"control characters", "y\x00 = 4\tx", "y = 4 x"},
		{"form feed restored", "\frac{1}{2}", `\frac{1}{2}`},
		{"tab newline and return commands restored", "\theta = 30 \neq 40 \times 2", `\theta = 30 \neq 40 \times 2`},
		{"right restored", "\\left( x \right)", `\left( x \right)`},
		{"literal latex newline kept", `a \neq b\n`, `a \neq b`},
		{"plain line breaks", "x = 2\nthen\ty = 3", "x = 2 then y = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := results.CleanStudentText(tt.in); got != tt.want {
				t.Errorf("CleanStudentText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	annotations := []results.Annotation{
		{LineID: "l1", Action: "Tick", Text: "null"},
		{Action: "tick", Text: "B1"},
		{LineID: "l3", Action: "tick", Text: "A1", Unmatched: true},
	}
	results.Sanitize(annotations)

	if annotations[0].Text != "" || annotations[0].Action != "tick" {
		t.Errorf("first = %+v", annotations[0])
	}
	if !strings.HasPrefix(annotations[1].LineID, "ghost_1_") || !strings.HasPrefix(annotations[2].LineID, "ghost_2_") {
		t.Errorf("ghost ids = %q, %q", annotations[1].LineID, annotations[2].LineID)
	}
	if annotations[1].LineID == annotations[2].LineID {
		t.Error("ghost ids must be unique")
	}
}

func TestReconcilePages(t *testing.T) {
	annotations := []results.Annotation{
		{LineID: "1", SubQuestion: "3(a)", PageIndex: 0},
		{LineID: "2", SubQuestion: "b", PageIndex: 2},
		{LineID: "3", PageIndex: 5},
		{LineID: "4", SubQuestion: "question 3c", PageIndex: 0},
		{LineID: "5", SubQuestion: "Q3 (a)(ii)", PageIndex: 0},
	}
	fixed := results.ReconcilePages(annotations, map[string]int{"a": 1, "b": 2, "c": 3, "aii": 4})

	if fixed != 3 {
		t.Errorf("fixed = %d, want 3", fixed)
	}
	want := []int{1, 2, 5, 3, 4}
	for i, a := range annotations {
		if a.PageIndex != want[i] {
			t.Errorf("annotation %s on page %d, want %d", a.LineID, a.PageIndex, want[i])
		}
	}
}

func TestMarksFor(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"M1 A1", 2},
		{"M2,A1", 3},
		{"B1 B0", 1},
		{"3", 1},
		{"2 2", 2},
		{"Correct method", 1},
		{`\frac{1}{2}`, 1},
		{"x^2 + 2x", 1},
		{"M1 x=2", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := results.MarksFor(tt.text); got != tt.want {
				t.Errorf("MarksFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveBudget(t *testing.T) {
	tests := []struct {
		name     string
		model    int
		estimate bool
		scheme   int
		awarded  int
		want     int
	}{
		{"model total trusted", 5, false, 8, 3, 5},
		{"scheme beats estimate", 5, true, 8, 3, 8},
		{"estimate beats generic scheme", 5, true, 20, 3, 5},
		{"scheme when model silent", 0, false, 8, 3, 8},
		{"estimate when no scheme total", 6, true, 0, 3, 6},
		{"awarded as last resort", 0, false, 0, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := results.ResolveBudget(tt.model, tt.estimate, tt.scheme, tt.awarded)
			if got != tt.want {
				t.Errorf("ResolveBudget = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeBoxes(t *testing.T) {
	var cfg results.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	annotations := []results.Annotation{
		{SubQuestion: "a", BBox: []float64{0.1, 0.1, 0.5, 0.5}},
		{SubQuestion: "a", BBox: []float64{0.6, 0.6, 0.04, 0.04}},
		{SubQuestion: "b", BBox: []float64{0.61, 0.61, 0.04, 0.04}},
		{SubQuestion: "b", BBox: []float64{0.6, 0.6, 0.04, 0.04}, PageIndex: 1},
	}
	results.NormalizeBoxes(annotations, cfg)

	shrunk := annotations[0].BBox
	if shrunk[2] != cfg.DefaultMarkerSize || math.Abs(shrunk[0]-0.33) > 1e-9 {
		t.Errorf("shrunk box = %v", shrunk)
	}
	if moved := annotations[2].BBox[1]; math.Abs(moved-0.65) > 1e-9 {
		t.Errorf("overlapping marker y = %v, want 0.65", moved)
	}
	if annotations[3].BBox[1] != 0.6 {
		t.Errorf("marker on another page moved to %v", annotations[3].BBox[1])
	}
}

func TestNormalizeBoxesCrowdedPage(t *testing.T) {
	var cfg results.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	tests := []struct {
		name        string
		annotations []results.Annotation
	}{
		{
			name: "stacked near the bottom edge",
			annotations: []results.Annotation{
				{SubQuestion: "a", BBox: []float64{0.5, 0.90, 0.04, 0.04}},
				{SubQuestion: "b", BBox: []float64{0.5, 0.93, 0.04, 0.04}},
				{SubQuestion: "c", BBox: []float64{0.5, 0.96, 0.04, 0.04}},
			},
		},
		{
			name: "pushed marker lands on an earlier one",
			annotations: []results.Annotation{
				{SubQuestion: "a", BBox: []float64{0.50, 0.10, 0.04, 0.04}},
				{SubQuestion: "b", BBox: []float64{0.53, 0.12, 0.04, 0.04}},
				{SubQuestion: "c", BBox: []float64{0.51, 0.13, 0.04, 0.04}},
				{SubQuestion: "a", BBox: []float64{0.52, 0.16, 0.04, 0.04}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results.NormalizeBoxes(tt.annotations, cfg)

			for i, a := range tt.annotations {
				if y := a.BBox[1]; y < 0 || y > 1-a.BBox[3]+1e-9 {
					t.Errorf("marker %d off page at y = %v", i, y)
				}
				for j, b := range tt.annotations[i+1:] {
					if a.SubQuestion == b.SubQuestion {
						continue
					}
					if boxesOverlap(a.BBox, b.BBox) {
						t.Errorf("markers %d and %d overlap: %v %v", i, i+1+j, a.BBox, b.BBox)
					}
				}
			}
		})
	}
}

func boxesOverlap(a, b []float64) bool {
	const eps = 1e-9
	return a[0]+eps < b[0]+b[2] && b[0]+eps < a[0]+a[2] &&
		a[1]+eps < b[1]+b[3] && b[1]+eps < a[1]+a[3]
}

func TestParse(t *testing.T) {
	raw := "Here is the marking:\n```json\n" + `{"annotations":[
 {"step_id":"l1","action":"tick","text":"M1 A1","page":"0","sub_question":"a","box":{"x":0.2,"y":0.2,"width":0.03,"height":0.03}},
 {"lineId":"l2","action":"cross","text":"A0 A0","page_index":0},
 {"action":"tick","text":"B1","unmatched":true},
 {"id":4,"action":"tick","text":"\\frac{3}{4}"}
],"student_score":{"awarded_marks":9,"total_marks":5,"is_estimate":false}}` + "\n```\nLet me know."

	p := newParser(t)

	t.Run("scores from annotations", func(t *testing.T) {
		r, err := p.Parse(raw, results.Context{SchemeTotal: 6, Pages: map[string]int{"a": 1}})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if r.StudentScore.ScoreText != "4/5" {
			t.Errorf("score = %s, want 4/5", r.StudentScore.ScoreText)
		}
		if len(r.Annotations) != 4 {
			t.Fatalf("annotations = %d", len(r.Annotations))
		}
		if r.Annotations[0].LineID != "l1" || r.Annotations[0].PageIndex != 1 || len(r.Annotations[0].BBox) != 4 {
			t.Errorf("first = %+v", r.Annotations[0])
		}
		if r.Annotations[1].Text != "A0" {
			t.Errorf("zero codes = %q", r.Annotations[1].Text)
		}
		if !strings.HasPrefix(r.Annotations[2].LineID, "ghost_") {
			t.Errorf("unmatched id = %q", r.Annotations[2].LineID)
		}
		if r.Annotations[3].LineID != "4" {
			t.Errorf("numeric id = %q", r.Annotations[3].LineID)
		}
	})

	t.Run("awarded never exceeds total", func(t *testing.T) {
		out := `[{"line_id":"1","action":"tick","text":"M2 A2"}]`
		r, err := p.Parse(out, results.Context{SchemeTotal: 3})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if r.StudentScore.AwardedMarks != 3 || r.StudentScore.TotalMarks != 3 {
			t.Errorf("score = %+v", r.StudentScore)
		}
	})

	t.Run("malformed output repaired", func(t *testing.T) {
		out := "```\n" + `{"annotations":[{"line_id":"1","action":"tick","text":"B1",{"line_id":"2","action":"tick","text":"B1"}]}` + "\n```"
		r, err := p.Parse(out, results.Context{SchemeTotal: 2})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !r.Repaired || r.StudentScore.ScoreText != "2/2" {
			t.Errorf("result = %+v", r)
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := p.Parse("I could not mark this answer.", results.Context{})
		if !errors.Is(err, results.ErrMarkingParseFailure) {
			t.Errorf("err = %v, want ErrMarkingParseFailure", err)
		}
	})
}
