package matching

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketPattern = regexp.MustCompile(`\[[^\]]*\]`)
	diagramPattern = regexp.MustCompile(`\((?:diagram|figure|graph|image|not drawn)[^)]*\)`)
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	unitPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(°|%|degrees|cm³|cm²|cm|mm|km|kg|ml|m²|m³|m|g|l|s)`)
	moneyPattern   = regexp.MustCompile(`£\s*(\d+(?:\.\d+)?)`)
)

var instructionPhrases = []string{
	"work out",
	"calculate",
	"show that",
	"find",
	"simplify",
	"solve",
	"expand",
	"factorise",
	"factorize",
	"estimate",
	"give your answer",
	"prove",
	"explain",
	"write down",
	"hence",
}

var lower = cases.Lower(language.Und)

// fold applies compatibility normalization, lowercasing, and removes
// bracketed or diagram descriptions.
func fold(text string) string {
	s := lower.String(norm.NFKC.String(text))
	s = bracketPattern.ReplaceAllString(s, " ")
	return diagramPattern.ReplaceAllString(s, " ")
}

// Normalize prepares question text for comparison: NFKC, lowercase, diagram
// descriptions removed, punctuation replaced by spaces, whitespace collapsed.
// Decimal points between digits are kept.
func Normalize(text string) string {
	runes := []rune(fold(text))
	var b strings.Builder
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits normalized text into words.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// KeyPhrases extracts instructional phrases and number+unit quantities.
// The result is sorted and free of duplicates.
func KeyPhrases(text string) []string {
	folded := fold(text)
	normalized := " " + Normalize(text) + " "

	var phrases []string
	for _, p := range instructionPhrases {
		if strings.Contains(normalized, " "+p+" ") {
			phrases = append(phrases, p)
		}
	}

	for _, m := range unitPattern.FindAllStringSubmatchIndex(folded, -1) {
		end := m[1]
		if end < len(folded) {
			next := []rune(folded[end:])[0]
			if unicode.IsLetter(next) {
				continue
			}
		}
		unit := folded[m[4]:m[5]]
		if unit == "degrees" {
			unit = "°"
		}
		phrases = append(phrases, folded[m[2]:m[3]]+unit)
	}

	for _, m := range moneyPattern.FindAllStringSubmatch(folded, -1) {
		phrases = append(phrases, "£"+m[1])
	}

	slices.Sort(phrases)
	return slices.Compact(phrases)
}

// Numbers extracts the numeric literals of text, sorted and deduplicated.
func Numbers(text string) []string {
	nums := numberPattern.FindAllString(norm.NFKC.String(text), -1)
	slices.Sort(nums)
	return slices.Compact(nums)
}
