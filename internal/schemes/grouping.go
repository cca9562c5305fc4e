package schemes

import (
	"regexp"
	"strings"
)

var baseQuestionPattern = regexp.MustCompile(`(?i)^\s*(?:q(?:uestion)?\.?\s*)?(\d+)(.*)$`)

// Question is one detected question or sub-question on the answer sheet.
type Question struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Group collects the detected sub-questions of one base question.
type Group struct {
	Base      string     `json:"base"`
	Questions []Question `json:"questions"`
}

// Text joins the question texts of the group.
func (g Group) Text() string {
	parts := make([]string, 0, len(g.Questions))
	for _, q := range g.Questions {
		if t := strings.TrimSpace(q.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Pages maps each sub-question label of the group to the page it was found on.
func (g Group) Pages() map[string]int {
	pages := make(map[string]int, len(g.Questions))
	for _, q := range g.Questions {
		pages[SubLabel(q.Label)] = q.Page
	}
	return pages
}

// BaseQuestion infers the parent question number of a label:
// "3(a)(ii)", "3ai" and "Q3b" all give "3". Labels without a number are
// returned trimmed.
func BaseQuestion(label string) string {
	m := baseQuestionPattern.FindStringSubmatch(label)
	if m == nil {
		return strings.TrimSpace(label)
	}
	if n := strings.TrimLeft(m[1], "0"); n != "" {
		return n
	}
	return "0"
}

// SubLabel returns the sub-question part of a label in a canonical form:
// "3(a)(ii)" gives "aii", "Q3 b" gives "b". A bare base number gives "".
func SubLabel(label string) string {
	rest := label
	if m := baseQuestionPattern.FindStringSubmatch(label); m != nil {
		rest = m[2]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(rest) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupQuestions groups questions by base question number, ordered by first
// appearance.
func GroupQuestions(questions []Question) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, q := range questions {
		base := BaseQuestion(q.Label)
		i, ok := index[base]
		if !ok {
			i = len(groups)
			index[base] = i
			groups = append(groups, Group{Base: base})
		}
		groups[i].Questions = append(groups[i].Questions, q)
	}
	return groups
}
