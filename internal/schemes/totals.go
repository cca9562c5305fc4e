package schemes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	looseTotalPattern   = regexp.MustCompile(`(?i)\(\s*total\s*(?:[:=]\s*)?(?:of\s+)?(\d+)\s*marks?\s*\)`)
	bracketTotalPattern = regexp.MustCompile(`(?i)\[\s*(\d+)\s*marks?\s*\]`)
	partMarksPattern    = regexp.MustCompile(`(?m)(?:^|\s)\((\d{1,2})\)\s*$`)
)

func targetedTotalPattern(base string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`(?i)\(\s*total\s+for\s+question\s+q?%s\b\s*(?:is|=|:)?\s*(\d+)\s*marks?\s*\)`,
		regexp.QuoteMeta(base),
	))
}

// ParseMarksTotal finds the marks total of a question. The targeted
// "(Total for Question 3 is 4 marks)" form for the base question is looked
// up in the full page text. The loose "(Total 4 marks)" and "[4 marks]"
// forms and the sum of line-ending part marks such as "(2)" are only read
// from the question's own text, so other questions on the sheet cannot size
// it. Values outside 1..limit are ignored.
func ParseMarksTotal(pageText, questionText, base string, limit int) (int, bool) {
	inBounds := func(v int) bool { return v >= 1 && v <= limit }

	first := func(re *regexp.Regexp, text string) (int, bool) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, err := strconv.Atoi(m[1]); err == nil && inBounds(v) {
				return v, true
			}
		}
		return 0, false
	}

	if base = strings.TrimSpace(base); base != "" {
		if v, ok := first(targetedTotalPattern(base), pageText); ok {
			return v, true
		}
	}
	if v, ok := first(looseTotalPattern, questionText); ok {
		return v, true
	}
	if v, ok := first(bracketTotalPattern, questionText); ok {
		return v, true
	}

	sum := 0
	for _, m := range partMarksPattern.FindAllStringSubmatch(questionText, -1) {
		if v, err := strconv.Atoi(m[1]); err == nil {
			sum += v
		}
	}
	if inBounds(sum) {
		return sum, true
	}
	return 0, false
}
