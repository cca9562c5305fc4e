package schemes

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var codePattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

// Mark is one entry of a marking scheme.
type Mark struct {
	Code      string `json:"code"`
	Criterion string `json:"criterion,omitempty"`
	Guidance  string `json:"guidance,omitempty"`
}

// Value returns the numeric suffix of the mark code, or 0 when the code has
// none.
func (m Mark) Value() int {
	parts := codePattern.FindStringSubmatch(strings.TrimSpace(m.Code))
	if parts == nil {
		return 0
	}
	v, _ := strconv.Atoi(parts[2])
	return v
}

// ZeroValue reports whether the code denotes an ungranted variant, such as M0.
func (m Mark) ZeroValue() bool {
	return codePattern.MatchString(strings.TrimSpace(m.Code)) && m.Value() == 0
}

// Paper identifies a source exam paper.
type Paper struct {
	Title     string `json:"title"`
	Board     string `json:"board"`
	PaperCode string `json:"paper_code"`
	Series    string `json:"series"`
	Tier      string `json:"tier,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// Key identifies the paper for consensus voting.
func (p Paper) Key() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return strings.ToLower(t)
	}
	return strings.ToLower(strings.Join([]string{p.Board, p.PaperCode, p.Series, p.Tier}, "|"))
}

// Hint returns a search hint biased toward this paper.
func (p Paper) Hint() *PaperHint {
	return &PaperHint{
		Title:     p.Title,
		Board:     p.Board,
		PaperCode: p.PaperCode,
		Series:    p.Series,
		Tier:      p.Tier,
	}
}

// PaperHint narrows a corpus search to a suspected paper. Empty fields are
// unconstrained.
type PaperHint struct {
	Title     string `json:"title,omitempty"`
	Board     string `json:"board,omitempty"`
	PaperCode string `json:"paper_code,omitempty"`
	Series    string `json:"series,omitempty"`
	Tier      string `json:"tier,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// Matches reports whether p agrees with every non-empty hint field.
func (h *PaperHint) Matches(p Paper) bool {
	if h == nil {
		return true
	}
	eq := func(want, got string) bool {
		return want == "" || strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
	}
	return eq(h.Title, p.Title) &&
		eq(h.Board, p.Board) &&
		eq(h.PaperCode, p.PaperCode) &&
		eq(h.Series, p.Series) &&
		eq(h.Tier, p.Tier)
}

// Empty reports whether the hint constrains nothing.
func (h *PaperHint) Empty() bool {
	return h == nil || *h == PaperHint{}
}

// Shape is the layout of a stored scheme record.
type Shape int

const (
	// ShapeFlat is a single mark list.
	ShapeFlat Shape = iota
	// ShapeComposite is an object with shared marks and a map of
	// per-sub-question mark lists.
	ShapeComposite
	// ShapePerSubQuestion is an array of sub-question entries.
	ShapePerSubQuestion
)

func (s Shape) String() string {
	switch s {
	case ShapeComposite:
		return "composite"
	case ShapePerSubQuestion:
		return "per-sub-question"
	default:
		return "flat"
	}
}

// Part is the mark list of one sub-question.
type Part struct {
	Label string `json:"sub_question"`
	Marks []Mark `json:"marks"`
}

// Fragment is one stored scheme record resolved to its shape. Label is the
// sub-question the record was stored under, if any.
type Fragment struct {
	Label      string
	Shape      Shape
	Marks      []Mark
	Parts      []Part
	TotalMarks int
	Guidance   string
}

type compositeRecord struct {
	Marks            []Mark            `json:"marks"`
	SubQuestionMarks map[string][]Mark `json:"sub_question_marks"`
	Parts            map[string][]Mark `json:"parts"`
	TotalMarks       int               `json:"total_marks"`
	Guidance         string            `json:"guidance"`
}

// ParseFragment resolves the shape of a stored scheme record. Arrays of marks
// are flat, arrays of sub-question entries are per-sub-question, objects with
// a sub-question map are composite, and other objects are flat.
func ParseFragment(label string, data []byte) (Fragment, error) {
	f := Fragment{Label: label}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return f, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return f, fmt.Errorf("%w: %w", ErrInvalidScheme, err)
		}
		if len(raw) == 0 {
			return f, nil
		}

		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw[0], &probe); err != nil {
			return f, fmt.Errorf("%w: %w", ErrInvalidScheme, err)
		}

		if _, ok := probe["sub_question"]; ok {
			f.Shape = ShapePerSubQuestion
			if err := json.Unmarshal(data, &f.Parts); err != nil {
				return f, fmt.Errorf("%w: %w", ErrInvalidScheme, err)
			}
			return f, nil
		}

		f.Shape = ShapeFlat
		if err := json.Unmarshal(data, &f.Marks); err != nil {
			return f, fmt.Errorf("%w: %w", ErrInvalidScheme, err)
		}
		return f, nil
	}

	var rec compositeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return f, fmt.Errorf("%w: %w", ErrInvalidScheme, err)
	}

	f.Marks = rec.Marks
	f.TotalMarks = rec.TotalMarks
	f.Guidance = rec.Guidance

	subs := rec.SubQuestionMarks
	if len(subs) == 0 {
		subs = rec.Parts
	}
	if len(subs) == 0 {
		f.Shape = ShapeFlat
		return f, nil
	}

	f.Shape = ShapeComposite
	labels := make([]string, 0, len(subs))
	for l := range subs {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	for _, l := range labels {
		f.Parts = append(f.Parts, Part{Label: l, Marks: subs[l]})
	}
	return f, nil
}

// NormalizedScheme is the canonical scheme of one base question.
type NormalizedScheme struct {
	BaseQuestion     string            `json:"base_question"`
	Paper            Paper             `json:"paper"`
	Marks            []Mark            `json:"marks"`
	SubQuestionMarks map[string][]Mark `json:"sub_question_marks,omitempty"`
	SubQuestions     []string          `json:"sub_questions,omitempty"`
	TotalMarks       int               `json:"total_marks"`
	Guidance         string            `json:"guidance,omitempty"`
	IsGeneric        bool              `json:"is_generic"`
	Instruction      string            `json:"instruction,omitempty"`
	Confidence       float64           `json:"confidence"`
}

// Key identifies the scheme for merging.
func (s *NormalizedScheme) Key() string {
	return strings.Join([]string{s.BaseQuestion, strings.ToLower(s.Paper.Board), strings.ToLower(s.Paper.PaperCode)}, "|")
}

// AllMarks returns shared marks followed by sub-question marks in label order.
func (s *NormalizedScheme) AllMarks() []Mark {
	all := slices.Clone(s.Marks)
	for _, l := range s.SubQuestions {
		all = append(all, s.SubQuestionMarks[l]...)
	}
	return all
}

// Render formats the scheme as labelled mark lists for a marking prompt.
func (s *NormalizedScheme) Render() string {
	var b strings.Builder
	writeMarks := func(marks []Mark) {
		for _, m := range marks {
			b.WriteString("- ")
			b.WriteString(m.Code)
			if m.Criterion != "" {
				b.WriteString(": ")
				b.WriteString(m.Criterion)
			}
			if m.Guidance != "" {
				b.WriteString(" (")
				b.WriteString(m.Guidance)
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "Question %s", s.BaseQuestion)
	if s.TotalMarks > 0 {
		fmt.Fprintf(&b, " (%d marks)", s.TotalMarks)
	}
	b.WriteString("\n")
	writeMarks(s.Marks)
	for _, l := range s.SubQuestions {
		fmt.Fprintf(&b, "Part (%s):\n", l)
		writeMarks(s.SubQuestionMarks[l])
	}
	if s.Guidance != "" {
		b.WriteString("Guidance: ")
		b.WriteString(s.Guidance)
		b.WriteString("\n")
	}
	return b.String()
}

// Normalize folds the fragments of a match into one scheme. Flat fragments
// stored under a sub-question label land in that sub-question's list.
func Normalize(base string, paper Paper, confidence float64, fragments []Fragment) NormalizedScheme {
	s := NormalizedScheme{
		BaseQuestion:     base,
		Paper:            paper,
		SubQuestionMarks: make(map[string][]Mark),
		Confidence:       confidence,
		Instruction:      StrictInstruction,
	}

	declared := 0
	var guidance []string
	for _, f := range fragments {
		declared += f.TotalMarks
		if g := strings.TrimSpace(f.Guidance); g != "" {
			guidance = append(guidance, g)
		}

		label := SubLabel(f.Label)
		switch f.Shape {
		case ShapeFlat:
			s.addMarks(label, f.Marks)
		case ShapeComposite, ShapePerSubQuestion:
			s.addMarks(label, f.Marks)
			for _, p := range f.Parts {
				s.addMarks(SubLabel(p.Label), p.Marks)
			}
		}
	}

	s.Guidance = strings.Join(guidance, " ")
	s.TotalMarks = declared
	if s.TotalMarks == 0 {
		s.TotalMarks = markValueTotal(s.AllMarks())
	}
	return s
}

func (s *NormalizedScheme) addMarks(label string, marks []Mark) {
	if len(marks) == 0 {
		return
	}
	if label == "" {
		s.Marks = dedupeMarks(s.Marks, marks)
		return
	}
	if s.SubQuestionMarks == nil {
		s.SubQuestionMarks = make(map[string][]Mark)
	}
	if _, ok := s.SubQuestionMarks[label]; !ok {
		s.SubQuestions = append(s.SubQuestions, label)
		slices.Sort(s.SubQuestions)
	}
	s.SubQuestionMarks[label] = dedupeMarks(s.SubQuestionMarks[label], marks)
}

// dedupeMarks appends marks whose codes are not already in list. Zero-value
// codes are always kept.
func dedupeMarks(list, marks []Mark) []Mark {
	seen := make(map[string]bool, len(list))
	for _, m := range list {
		seen[strings.ToUpper(m.Code)] = true
	}
	for _, m := range marks {
		code := strings.ToUpper(strings.TrimSpace(m.Code))
		if code == "" {
			continue
		}
		if seen[code] && !m.ZeroValue() {
			continue
		}
		seen[code] = true
		list = append(list, m)
	}
	return list
}

func markValueTotal(marks []Mark) int {
	total := 0
	for _, m := range marks {
		total += m.Value()
	}
	return total
}

// Merge combines schemes sharing a (base question, board, paper code) key.
// The first scheme of each key keeps its position; later ones contribute
// their marks.
func Merge(list []NormalizedScheme) []NormalizedScheme {
	index := make(map[string]int)
	merged := make([]NormalizedScheme, 0, len(list))

	for _, s := range list {
		i, ok := index[s.Key()]
		if !ok {
			index[s.Key()] = len(merged)
			merged = append(merged, s)
			continue
		}

		dst := &merged[i]
		if dst.IsGeneric && !s.IsGeneric {
			*dst = s
			continue
		}
		if s.IsGeneric {
			continue
		}

		dst.addMarks("", s.Marks)
		for _, l := range s.SubQuestions {
			dst.addMarks(l, s.SubQuestionMarks[l])
		}
		dst.TotalMarks = max(dst.TotalMarks, s.TotalMarks)
		dst.Confidence = max(dst.Confidence, s.Confidence)
	}
	return merged
}
