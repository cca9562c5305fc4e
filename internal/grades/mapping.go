package grades

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/examiner/pkg/query"
	"github.com/JaimeStill/examiner/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "grade_boundaries", "gb").
	Project("id", "ID").
	Project("board", "Board").
	Project("series", "Series").
	Project("subject", "Subject").
	Project("subject_code", "SubjectCode").
	Project("tiers", "Tiers").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "Board"},
	{Field: "Series"},
	{Field: "Subject"},
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	var tiers []byte
	err := s.Scan(
		&e.ID,
		&e.Board,
		&e.Series,
		&e.Subject,
		&e.SubjectCode,
		&tiers,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}
	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &e.Tiers); err != nil {
			return e, fmt.Errorf("decode tiers for %s: %w", e.ID, err)
		}
	}
	return e, nil
}
