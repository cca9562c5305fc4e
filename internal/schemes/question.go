package schemes

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/pkg/query"
	"github.com/JaimeStill/examiner/pkg/repository"
)

// Record is one stored question of the corpus with its scheme fragment.
type Record struct {
	ID             uuid.UUID       `json:"id"`
	Board          string          `json:"board"`
	PaperCode      string          `json:"paper_code"`
	Series         string          `json:"series"`
	Tier           string          `json:"tier"`
	Subject        string          `json:"subject"`
	PaperTitle     string          `json:"paper_title"`
	QuestionNumber string          `json:"question_number"`
	SubQuestion    string          `json:"sub_question"`
	QuestionText   string          `json:"question_text"`
	Scheme         json.RawMessage `json:"scheme"`
	TotalMarks     int             `json:"total_marks"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Paper returns the paper the record belongs to.
func (r Record) Paper() Paper {
	return Paper{
		Title:     r.PaperTitle,
		Board:     r.Board,
		PaperCode: r.PaperCode,
		Series:    r.Series,
		Tier:      r.Tier,
		Subject:   r.Subject,
	}
}

// CreateCommand carries the data needed to add a question to the corpus.
type CreateCommand struct {
	Board          string          `json:"board"`
	PaperCode      string          `json:"paper_code"`
	Series         string          `json:"series"`
	Tier           string          `json:"tier"`
	Subject        string          `json:"subject"`
	PaperTitle     string          `json:"paper_title"`
	QuestionNumber string          `json:"question_number"`
	SubQuestion    string          `json:"sub_question"`
	QuestionText   string          `json:"question_text"`
	Scheme         json.RawMessage `json:"scheme"`
	TotalMarks     int             `json:"total_marks"`
}

var projection = query.
	NewProjectionMap("public", "questions", "q").
	Project("id", "ID").
	Project("board", "Board").
	Project("paper_code", "PaperCode").
	Project("series", "Series").
	Project("tier", "Tier").
	Project("subject", "Subject").
	Project("paper_title", "PaperTitle").
	Project("question_number", "QuestionNumber").
	Project("sub_question", "SubQuestion").
	Project("question_text", "QuestionText").
	Project("scheme", "Scheme").
	Project("total_marks", "TotalMarks").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "PaperTitle"},
	{Field: "QuestionNumber"},
	{Field: "SubQuestion"},
}

// Filters contains optional filtering criteria for question queries.
// Nil fields are ignored. PaperTitle uses case-insensitive contains matching.
type Filters struct {
	Board          *string `json:"board,omitempty"`
	PaperCode      *string `json:"paper_code,omitempty"`
	Series         *string `json:"series,omitempty"`
	Tier           *string `json:"tier,omitempty"`
	Subject        *string `json:"subject,omitempty"`
	PaperTitle     *string `json:"paper_title,omitempty"`
	QuestionNumber *string `json:"question_number,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Board", f.Board).
		WhereEquals("PaperCode", f.PaperCode).
		WhereEquals("Series", f.Series).
		WhereEquals("Tier", f.Tier).
		WhereEquals("Subject", f.Subject).
		WhereContains("PaperTitle", f.PaperTitle).
		WhereEquals("QuestionNumber", f.QuestionNumber)
}

// FiltersFromHint restricts a search to the non-empty fields of a hint.
func FiltersFromHint(h *PaperHint) Filters {
	if h == nil {
		return Filters{}
	}
	return Filters{
		Board:      query.NonEmpty(h.Board),
		PaperCode:  query.NonEmpty(h.PaperCode),
		Series:     query.NonEmpty(h.Series),
		Tier:       query.NonEmpty(h.Tier),
		Subject:    query.NonEmpty(h.Subject),
		PaperTitle: query.NonEmpty(h.Title),
	}
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{
		Board:          query.Param(values, "board"),
		PaperCode:      query.Param(values, "paper_code"),
		Series:         query.Param(values, "series"),
		Tier:           query.Param(values, "tier"),
		Subject:        query.Param(values, "subject"),
		PaperTitle:     query.Param(values, "paper_title"),
		QuestionNumber: query.Param(values, "question_number"),
	}
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	var scheme []byte
	err := s.Scan(
		&r.ID,
		&r.Board,
		&r.PaperCode,
		&r.Series,
		&r.Tier,
		&r.Subject,
		&r.PaperTitle,
		&r.QuestionNumber,
		&r.SubQuestion,
		&r.QuestionText,
		&scheme,
		&r.TotalMarks,
		&r.CreatedAt,
	)
	r.Scheme = json.RawMessage(scheme)
	return r, err
}
