package prompts

import (
	"net/url"

	"github.com/JaimeStill/examiner/pkg/query"
	"github.com/JaimeStill/examiner/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

var defaultSort = []query.SortField{
	{Field: "Stage"},
	{Field: "Name"},
}

// Filters narrows prompt listings. Nil fields are ignored and Name matches
// as a case-insensitive substring.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Stage", f.Stage).
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery reads stage, name, and active query parameters. An
// unknown stage is kept so the listing comes back empty rather than
// unfiltered.
func FiltersFromQuery(values url.Values) Filters {
	f := Filters{
		Name:   query.Param(values, "name"),
		Active: query.BoolParam(values, "active"),
	}
	if s := query.Param(values, "stage"); s != nil {
		stage := Stage(*s)
		f.Stage = &stage
	}
	return f
}

func scanPrompt(s repository.Scanner) (p Prompt, err error) {
	err = s.Scan(&p.ID, &p.Name, &p.Stage, &p.Instructions, &p.Description, &p.Active)
	return p, err
}
