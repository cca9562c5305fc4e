package marking

import (
	"regexp"
	"strings"

	"github.com/JaimeStill/examiner/internal/schemes"
)

var (
	prefixedLabel = regexp.MustCompile(`(?i)^\s*q(?:uestion)?\s*\.?\s*(\d{1,2})\s*((?:\([a-h]\))?(?:\([ivx]{1,4}\))?)`)
	partLabel     = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s*(\([a-h]\)(?:\([ivx]{1,4}\))?)`)
	numberedLabel = regexp.MustCompile(`^\s*(\d{1,2})\s*[.)](?:\s|$)`)
	subOnlyLabel  = regexp.MustCompile(`(?i)^\s*(?:\(([a-h])\)|([a-h])\))(?:\s*\(([ivx]{1,4})\))?`)
)

// Work is the student work attributed to one detected question label.
type Work struct {
	Label string `json:"label"`
	Page  int    `json:"page"`
	Lines []Line `json:"lines"`
}

// Question converts the work to a scheme lookup question.
func (w Work) Question() schemes.Question {
	return schemes.Question{Label: w.Label, Text: w.Text(), Page: w.Page}
}

// Text joins the line texts in reading order.
func (w Work) Text() string {
	parts := make([]string, len(w.Lines))
	for i, l := range w.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// ParseLabel reports the question label a line starts with. A bare
// sub-question marker such as "(b)" is resolved against the current base.
func ParseLabel(text, base string) (string, bool) {
	if m := prefixedLabel.FindStringSubmatch(text); m != nil {
		return m[1] + strings.ToLower(m[2]), true
	}
	if m := partLabel.FindStringSubmatch(text); m != nil {
		return m[1] + strings.ToLower(m[2]), true
	}
	if m := numberedLabel.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if base == "" {
		return "", false
	}
	if m := subOnlyLabel.FindStringSubmatch(text); m != nil {
		letter := strings.ToLower(m[1] + m[2])
		label := base + "(" + letter + ")"
		if m[3] != "" {
			label += "(" + strings.ToLower(m[3]) + ")"
		}
		return label, true
	}
	return "", false
}

// DetectQuestions splits the lines of every page into per-label work in
// reading order. Lines ahead of the first label belong to the first question.
// When no label is found the whole submission is one question "1".
func DetectQuestions(pages []Page) []Work {
	var (
		works    []Work
		preamble []Line
	)

	for _, p := range pages {
		for _, line := range p.Lines() {
			base := ""
			if n := len(works); n > 0 {
				base = schemes.BaseQuestion(works[n-1].Label)
			}

			label, ok := ParseLabel(line.Text, base)
			switch {
			case ok && (len(works) == 0 || works[len(works)-1].Label != label):
				works = append(works, Work{Label: label, Page: line.Page, Lines: []Line{line}})
			case len(works) > 0:
				works[len(works)-1].Lines = append(works[len(works)-1].Lines, line)
			default:
				preamble = append(preamble, line)
			}
		}
	}

	if len(works) == 0 {
		if len(preamble) == 0 {
			return nil
		}
		return []Work{{Label: "1", Page: preamble[0].Page, Lines: preamble}}
	}

	if len(preamble) > 0 {
		works[0].Lines = append(preamble, works[0].Lines...)
	}
	return works
}
