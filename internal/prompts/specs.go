package prompts

const markSpec = `Respond with a JSON object matching this exact structure:

{
  "annotations": [
    {
      "line_id": "<id>",
      "action": "<tick|cross|mark|partial|comment>",
      "text": "<mark codes or comment>",
      "student_text": "<the student's work on this line>",
      "reasoning": "<why>",
      "bbox": [x, y, width, height],
      "page_index": 0,
      "sub_question": "<a|b|...>"
    }
  ],
  "student_score": {
    "awarded_marks": 0,
    "total_marks": 0,
    "is_estimate": false
  }
}

Field constraints:
- line_id: The id of the student work line the annotation belongs to. Use
  an empty string and set "unmatched": true when no line fits.
- action: tick or mark for awarded credit, partial for part credit,
  cross for an error, comment for a remark with no credit.
- text: Space-separated mark codes from the scheme (e.g. "M1 A1"), or a
  short comment for cross and comment actions. Zero-value codes such as
  M0 appear at most once.
- bbox: Normalized page coordinates in [0, 1] for the marker position,
  next to the line it refers to.
- student_score.total_marks: The question's total. Set is_estimate true
  when the total was not stated in the scheme or question.

Behavioral constraints:
- Respond with JSON only
- One annotation per marked line; do not repeat a code on the same line
- Escape backslashes in LaTeX as \\`

const mathSpec = `Respond with a JSON object matching this exact structure:

{
  "latex": "<transcription>",
  "confidence": 0.0
}

Field constraints:
- latex: The transcription in LaTeX, without surrounding $ delimiters.
- confidence: Your certainty in [0, 1] that the transcription is exact.

Behavioral constraints:
- Respond with JSON only
- Escape backslashes in LaTeX as \\`

var specs = map[Stage]string{
	StageMark:        markSpec,
	StageMarkGeneric: markSpec,
	StageMath:        mathSpec,
}

// Spec returns the hardcoded specification for a stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

// Compose joins the instructions and output specification of a stage into
// one system prompt.
func Compose(instructions, spec string) string {
	return instructions + "\n\n" + spec
}
