package mathregion

import (
	"regexp"
	"strings"
	"unicode"
)

const mathSymbols = "=+-−×÷*/^√π∫∑≤≥<>()±°²³"

var (
	fractionPattern = regexp.MustCompile(`\d+\s*/\s*\d+`)
	exponentPattern = regexp.MustCompile(`[a-zA-Z0-9)]\s*\^|\^\{|[²³]`)
	assignPattern   = regexp.MustCompile(`(?i)(^|\s|\()[a-z]\s*=`)
	equationPattern = regexp.MustCompile(`=\s*-?\d`)
	latexPattern    = regexp.MustCompile(`\\(frac|sqrt|times|div|pi|int|sum|le|ge|cdot|pm)\b|[_^]\{`)
	garbagePattern  = regexp.MustCompile(`[?�]|(^|\s)[~|_#@]{1,2}(\s|$)`)
	structuralCues  = []*regexp.Regexp{
		fractionPattern,
		exponentPattern,
		assignPattern,
		equationPattern,
		latexPattern,
	}
)

// Likeness scores how much text reads like mathematics, in [0, 1].
// It mixes symbol density, the digit and operator ratio, and structural
// cues such as fractions, exponents, assignments, and LaTeX commands.
func Likeness(text string) float64 {
	var total, symbols, digits int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case strings.ContainsRune(mathSymbols, r):
			symbols++
		case unicode.IsDigit(r):
			digits++
		}
	}

	if total == 0 {
		return 0
	}

	cues := 0
	for _, p := range structuralCues {
		if p.MatchString(text) {
			cues++
		}
	}

	density := min(1, 3*float64(symbols)/float64(total))
	ratio := float64(symbols+digits) / float64(total)
	structure := min(1, float64(cues)/2)

	return clamp01(0.4*density + 0.3*ratio + 0.3*structure)
}

// Suspicious reports whether primary recognition of a region is unreliable:
// low confidence or text containing recognizer garbage.
func Suspicious(text string, confidence, cutoff float64) bool {
	if confidence < cutoff {
		return true
	}
	return garbagePattern.MatchString(text)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
