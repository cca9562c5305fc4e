package marking

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/examiner/internal/schemes"
)

// MarkingRequest is the input of one model call. Instructions is the composed
// system prompt; Images holds the page images the group appears on.
type MarkingRequest struct {
	Question     string                   `json:"question"`
	Labels       []string                 `json:"labels"`
	Instructions string                   `json:"instructions"`
	Scheme       schemes.NormalizedScheme `json:"scheme"`
	Lines        []Line                   `json:"lines"`
	Images       [][]byte                 `json:"-"`
}

// Message renders the scheme and the student work as the user message.
func (r MarkingRequest) Message() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Question %s", r.Question)
	if len(r.Labels) > 1 {
		fmt.Fprintf(&sb, " (parts: %s)", strings.Join(r.Labels, ", "))
	}
	sb.WriteString("\n\nMarking scheme:\n")
	sb.WriteString(r.Scheme.Render())
	if r.Scheme.Instruction != "" {
		sb.WriteString("\n\n")
		sb.WriteString(r.Scheme.Instruction)
	}

	sb.WriteString("\n\nStudent work (line_id | page_index | x,y,width,height | text):\n")
	for _, l := range r.Lines {
		fmt.Fprintf(
			&sb, "%s | %d | %.3f,%.3f,%.3f,%.3f | %s\n",
			l.ID, l.Page, l.Box.X, l.Box.Y, l.Box.Width, l.Box.Height,
			strings.ReplaceAll(l.Text, "\n", " "),
		)
	}

	return sb.String()
}
