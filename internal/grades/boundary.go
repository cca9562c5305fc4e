package grades

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BoundaryType selects which boundary table of a tier applies.
type BoundaryType string

const (
	BoundaryPaper   BoundaryType = "paper"
	BoundaryOverall BoundaryType = "overall"
)

// Table maps a grade to the minimum score that earns it.
type Table map[string]int

// Tier holds the boundary tables of one entry tier such as "Higher".
type Tier struct {
	Name              string       `json:"name"`
	BoundaryType      BoundaryType `json:"boundary_type,omitempty"`
	PaperBoundaries   Table        `json:"paper_boundaries,omitempty"`
	OverallBoundaries Table        `json:"overall_boundaries,omitempty"`
}

// Entry is the grade boundary reference data for one qualification in one
// exam series.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Board       string    `json:"board"`
	Series      string    `json:"series"`
	Subject     string    `json:"subject"`
	SubjectCode string    `json:"subject_code"`
	Tiers       []Tier    `json:"tiers"`
	CreatedAt   time.Time `json:"created_at"`
}

// HighestGrade returns the best grade in table whose boundary is at or below
// score. Numeric grades are ranked by value; other grades by their boundary.
// It returns nil when score is below every boundary.
func HighestGrade(table Table, score int) *string {
	grades := make([]string, 0, len(table))
	for g := range table {
		grades = append(grades, g)
	}

	slices.SortFunc(grades, func(a, b string) int {
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		if errA == nil && errB == nil {
			return cmp.Compare(nb, na)
		}
		if c := cmp.Compare(table[b], table[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	for _, g := range grades {
		if table[g] <= score {
			return &g
		}
	}
	return nil
}

// NormalizeTier lowercases a tier name and strips a trailing "tier".
func NormalizeTier(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimSpace(strings.TrimSuffix(s, "tier"))
	return s
}

// NormalizeSubject lowercases a subject name and drops punctuation and the
// GCSE qualification prefix.
func NormalizeSubject(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	kept := fields[:0]
	for _, f := range fields {
		switch f {
		case "gcse", "igcse":
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// SubjectCode returns the subject code portion of an exam paper code, so
// "8300/1H" yields "8300".
func SubjectCode(examCode string) string {
	code, _, _ := strings.Cut(strings.TrimSpace(examCode), "/")
	return strings.ToUpper(code)
}
