package results

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	markCodePattern = regexp.MustCompile(`(?i)^[BMAPC](\d+)$`)
	tokenSeparators = regexp.MustCompile(`[\s,;/&+|]+`)
	latexCommand    = regexp.MustCompile(`\\[a-zA-Z]+`)
	mathOperator    = regexp.MustCompile(`[=^_{}<>≤≥×÷√π]|\d\s*[-*/]\s*\d`)
)

// genericTotals are scheme totals that mean no real total is known.
var genericTotals = map[int]bool{0: true, 20: true, 40: true, 100: true}

// Awarded recomputes the marks earned by the positive annotations. Each
// positive annotation contributes through MarksFor.
func Awarded(annotations []Annotation) int {
	total := 0
	for _, a := range annotations {
		if a.Positive() {
			total += MarksFor(a.Text)
		}
	}
	return total
}

// MarksFor returns the marks one positive annotation is worth. Raw
// mathematical text with no mark codes counts 1. Otherwise each mark code
// adds its value, each bare positive integer adds 1, and text with neither
// counts 1.
func MarksFor(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 1
	}

	tokens := tokenSeparators.Split(text, -1)
	if !hasMarkCode(tokens) && IsMathExpression(text) {
		return 1
	}

	marks, structured := 0, false
	for _, t := range tokens {
		t = strings.Trim(t, "()[].:")
		if t == "" {
			continue
		}
		if m := markCodePattern.FindStringSubmatch(t); m != nil {
			v, _ := strconv.Atoi(m[1])
			marks += v
			structured = true
			continue
		}
		if n, err := strconv.Atoi(t); err == nil {
			if n > 0 {
				marks++
			}
			structured = true
		}
	}

	if !structured {
		return 1
	}
	return marks
}

// IsMathExpression reports whether text reads as a raw LaTeX or symbolic
// expression rather than a list of mark codes.
func IsMathExpression(text string) bool {
	if strings.Contains(text, "$") || latexCommand.MatchString(text) {
		return true
	}
	return mathOperator.MatchString(text)
}

func hasMarkCode(tokens []string) bool {
	for _, t := range tokens {
		if markCodePattern.MatchString(strings.Trim(t, "()[].:")) {
			return true
		}
	}
	return false
}

// ResolveBudget chooses the authoritative total marks. The model's total is
// used when it is not an estimate, or when the scheme total is one of the
// generic defaults. Otherwise a positive scheme total wins, then the model's
// estimate, then the awarded marks themselves.
func ResolveBudget(modelTotal int, modelIsEstimate bool, schemeTotal int, awarded int) int {
	if modelTotal > 0 && (!modelIsEstimate || genericTotals[schemeTotal]) {
		return modelTotal
	}
	if schemeTotal > 0 {
		return schemeTotal
	}
	if modelTotal > 0 {
		return modelTotal
	}
	return awarded
}

// Clamp bounds awarded marks to [0, total].
func Clamp(awarded, total int) int {
	return max(0, min(awarded, total))
}
