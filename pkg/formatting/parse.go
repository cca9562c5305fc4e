package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly or from a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

var (
	jsonFence = regexp.MustCompile("(?is)```json[ \t]*\\n?(.*?)```")
	bareFence = regexp.MustCompile("(?s)```[ \t]*\\n(.*?)```")
	anyFence  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\n?(.*?)```")
)

// ExtractJSON returns the body of the first json-labelled code fence in
// content, else the first unlabelled fence, else any fence, else the whole
// content. The result is trimmed.
func ExtractJSON(content string) string {
	for _, re := range []*regexp.Regexp{jsonFence, bareFence, anyFence} {
		if m := re.FindStringSubmatch(content); len(m) >= 2 {
			if body := strings.TrimSpace(m[1]); body != "" {
				return body
			}
		}
	}
	return strings.TrimSpace(content)
}

// Parse attempts to unmarshal content as JSON into T.
// If direct parsing fails, it extracts JSON from a markdown code fence
// and retries. Returns ErrParseFailed if both attempts fail.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if err := json.Unmarshal([]byte(ExtractJSON(content)), &result); err == nil {
		return result, nil
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
}
