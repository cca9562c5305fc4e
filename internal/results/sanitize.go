package results

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/internal/schemes"
)

var zeroCodePattern = regexp.MustCompile(`(?i)^[a-z]+0$`)

var nullish = map[string]bool{
	"null":      true,
	"undefined": true,
	"none":      true,
	"nil":       true,
	"n/a":       true,
}

// Sanitize cleans annotations in place: null-like literals become empty,
// stray characters are stripped from student text, repeated zero-value
// codes collapse to one, and annotations without a line id or marked
// unmatched receive a unique ghost id.
func Sanitize(annotations []Annotation) {
	ghost := 0
	for i := range annotations {
		a := &annotations[i]

		a.LineID = clearNullish(strings.TrimSpace(a.LineID))
		a.Action = strings.ToLower(clearNullish(strings.TrimSpace(a.Action)))
		a.Text = DedupeZeroCodes(restoreLatex(clearNullish(strings.TrimSpace(a.Text))))
		a.StudentText = CleanStudentText(clearNullish(a.StudentText))
		a.SubQuestion = clearNullish(strings.TrimSpace(a.SubQuestion))
		a.Reasoning = clearNullish(strings.TrimSpace(a.Reasoning))

		if a.LineID == "" || a.Unmatched {
			ghost++
			a.LineID = GhostID(ghost)
		}
	}
}

// GhostID returns a unique synthetic line id.
func GhostID(n int) string {
	return fmt.Sprintf("ghost_%d_%s", n, uuid.NewString()[:8])
}

func clearNullish(s string) string {
	if nullish[strings.ToLower(strings.TrimSpace(s))] {
		return ""
	}
	return s
}

// latexCommands are the LaTeX commands whose leading letter a JSON decoder
// turns into a tab, newline or carriage return.
var latexCommands = wordSet(`
	tan tanh tau text textbf tfrac therefore theta tilde times to top triangle
	nabla ne neg neq newline ni not notin nu
	rangle rceil rfloor rho right rightarrow rm
`)

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

var controlEscapes = map[rune]byte{'\t': 't', '\n': 'n', '\r': 'r'}

// restoreLatex turns control runes that a JSON decoder made from LaTeX
// escapes back into the backslash sequences they came from. Form feed and
// backspace always come from \frac or \binom style commands. Tab, newline
// and carriage return are restored only when the letters that follow
// complete a known command, as in \theta, \neq and \right.
func restoreLatex(s string) string {
	s = strings.NewReplacer("\f", `\f`, "\b", `\b`).Replace(s)
	if !strings.ContainsAny(s, "\t\n\r") {
		return s
	}

	var b strings.Builder
	for i, r := range s {
		if c, ok := controlEscapes[r]; ok && latexCommands[string(c)+letterRun(s[i+1:])] {
			b.WriteByte('\\')
			b.WriteByte(c)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// letterRun returns the ASCII letters at the start of s.
func letterRun(s string) string {
	n := 0
	for n < len(s) && (s[n] >= 'a' && s[n] <= 'z' || s[n] >= 'A' && s[n] <= 'Z') {
		n++
	}
	return s[:n]
}

// literalNewlines replaces two-character "\n" sequences with a space unless
// they begin a known LaTeX command.
func literalNewlines(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == 'n' && !latexCommands["n"+letterRun(s[i+2:])] {
			b.WriteByte(' ')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// CleanStudentText removes control characters, literal "\n" sequences,
// stray backticks, and wrapping quotes from transcribed student work.
func CleanStudentText(s string) string {
	s = literalNewlines(restoreLatex(s))
	s = strings.ReplaceAll(s, "`", "")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || r == '�' {
			return -1
		}
		return r
	}, s)

	s = strings.Join(strings.Fields(s), " ")
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// DedupeZeroCodes keeps the first occurrence of each zero-value mark code in
// a space-separated code list. Other tokens are kept as written.
func DedupeZeroCodes(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return text
	}

	seen := make(map[string]bool)
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		code := strings.ToUpper(strings.Trim(t, ",;"))
		if zeroCodePattern.MatchString(code) {
			if seen[code] {
				continue
			}
			seen[code] = true
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

// ReconcilePages moves annotations to the page recorded for their
// sub-question. Annotations without a sub-question or without a mapping are
// left alone. It returns the number of corrections.
func ReconcilePages(annotations []Annotation, pages map[string]int) int {
	if len(pages) == 0 {
		return 0
	}

	fixed := 0
	for i := range annotations {
		a := &annotations[i]
		if a.SubQuestion == "" {
			continue
		}
		page, ok := pages[schemes.SubLabel(a.SubQuestion)]
		if !ok || page == a.PageIndex {
			continue
		}
		a.PageIndex = page
		fixed++
	}
	return fixed
}
