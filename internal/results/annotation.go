package results

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Annotation is one mark record produced by the marking model.
type Annotation struct {
	LineID      string    `json:"line_id"`
	Action      string    `json:"action"`
	Text        string    `json:"text"`
	StudentText string    `json:"student_text,omitempty"`
	Reasoning   string    `json:"reasoning,omitempty"`
	BBox        []float64 `json:"bbox,omitempty"`
	PageIndex   int       `json:"page_index"`
	SubQuestion string    `json:"sub_question,omitempty"`
	Unmatched   bool      `json:"unmatched,omitempty"`
}

// Positive reports whether the annotation awards credit.
func (a Annotation) Positive() bool {
	switch strings.ToLower(strings.TrimSpace(a.Action)) {
	case "tick", "mark", "partial":
		return true
	}
	return false
}

// StudentScore is the authoritative score of a marked answer.
type StudentScore struct {
	AwardedMarks int    `json:"awarded_marks"`
	TotalMarks   int    `json:"total_marks"`
	ScoreText    string `json:"score_text"`
}

// NewStudentScore builds a score with its "awarded/total" text.
func NewStudentScore(awarded, total int) StudentScore {
	return StudentScore{
		AwardedMarks: awarded,
		TotalMarks:   total,
		ScoreText:    fmt.Sprintf("%d/%d", awarded, total),
	}
}

// modelScore is the model's own account of the score. It is read for the
// total only and never trusted for awarded marks.
type modelScore struct {
	AwardedMarks float64 `json:"awarded_marks"`
	TotalMarks   float64 `json:"total_marks"`
	IsEstimate   bool    `json:"is_estimate"`
}

type modelOutput struct {
	Annotations  []Annotation `json:"annotations"`
	StudentScore *modelScore  `json:"student_score"`
}

var keyAliases = map[string]string{
	"step_id":           "line_id",
	"stepId":            "line_id",
	"lineId":            "line_id",
	"lineID":            "line_id",
	"id":                "line_id",
	"page":              "page_index",
	"pageIndex":         "page_index",
	"subQuestion":       "sub_question",
	"sub_question_id":   "sub_question",
	"studentText":       "student_text",
	"student_work":      "student_text",
	"box":               "bbox",
	"boundingBox":       "bbox",
	"studentScore":      "student_score",
	"score":             "student_score",
	"awardedMarks":      "awarded_marks",
	"totalMarks":        "total_marks",
	"isEstimate":        "is_estimate",
	"total_is_estimate": "is_estimate",
	"marks":             "annotations",
}

// decode reads repaired JSON into a modelOutput. Key aliases are renamed,
// numeric ids and texts become strings, and string page numbers become
// integers. A bare array is read as the annotation list.
func decode(data string) (modelOutput, error) {
	var raw any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return modelOutput{}, fmt.Errorf("%w: %w", ErrMarkingParseFailure, err)
	}

	if list, ok := raw.([]any); ok {
		raw = map[string]any{"annotations": list}
	}
	root, ok := raw.(map[string]any)
	if !ok {
		return modelOutput{}, fmt.Errorf("%w: unexpected top-level %T", ErrMarkingParseFailure, raw)
	}

	root = renameKeys(root)
	if list, ok := root["annotations"].([]any); ok {
		kept := make([]any, 0, len(list))
		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				kept = append(kept, coerceAnnotation(renameKeys(obj)))
			}
		}
		root["annotations"] = kept
	} else {
		delete(root, "annotations")
	}
	if score, ok := root["student_score"].(map[string]any); ok {
		root["student_score"] = coerceScore(renameKeys(score))
	} else {
		delete(root, "student_score")
	}

	normalized, err := json.Marshal(root)
	if err != nil {
		return modelOutput{}, fmt.Errorf("%w: %w", ErrMarkingParseFailure, err)
	}

	var out modelOutput
	if err := json.Unmarshal(normalized, &out); err != nil {
		return modelOutput{}, fmt.Errorf("%w: %w", ErrMarkingParseFailure, err)
	}
	return out, nil
}

func renameKeys(obj map[string]any) map[string]any {
	for alias, canonical := range keyAliases {
		v, ok := obj[alias]
		if !ok {
			continue
		}
		if _, exists := obj[canonical]; !exists {
			obj[canonical] = v
		}
		delete(obj, alias)
	}
	return obj
}

func coerceAnnotation(obj map[string]any) map[string]any {
	for _, key := range []string{"line_id", "text", "student_text", "sub_question", "action", "reasoning"} {
		obj[key] = coerceString(obj[key])
	}

	switch v := obj["page_index"].(type) {
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		obj["page_index"] = n
	case float64:
		obj["page_index"] = int(v)
	case nil:
		obj["page_index"] = 0
	}

	if box := coerceBox(obj["bbox"]); box != nil {
		obj["bbox"] = box
	} else {
		delete(obj, "bbox")
	}
	if v, ok := obj["unmatched"].(string); ok {
		obj["unmatched"] = strings.EqualFold(v, "true")
	}
	return obj
}

// coerceBox returns a box as four numbers, or nil when it is not one.
// Objects with x, y, width and height keys are accepted.
func coerceBox(v any) []float64 {
	switch t := v.(type) {
	case []any:
		if len(t) != 4 {
			return nil
		}
		box := make([]float64, 4)
		for i, n := range t {
			f, ok := n.(float64)
			if !ok {
				return nil
			}
			box[i] = f
		}
		return box
	case map[string]any:
		box := make([]float64, 4)
		for i, key := range []string{"x", "y", "width", "height"} {
			f, ok := t[key].(float64)
			if !ok {
				return nil
			}
			box[i] = f
		}
		return box
	}
	return nil
}

func coerceScore(obj map[string]any) map[string]any {
	for _, key := range []string{"awarded_marks", "total_marks"} {
		if v, ok := obj[key].(string); ok {
			f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
			obj[key] = f
		}
	}
	if v, ok := obj["is_estimate"].(string); ok {
		obj["is_estimate"] = strings.EqualFold(v, "true")
	}
	return obj
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, coerceString(p))
		}
		return strings.Join(parts, " ")
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
