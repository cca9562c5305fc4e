package results

import (
	"encoding/json"
	"strings"
)

// Repair returns s unchanged when it is valid JSON. Otherwise it applies, in
// order, brace closing, lone backslash escaping, and a double-escape cycle,
// returning the first stage that yields valid JSON.
func Repair(s string) (string, error) {
	if json.Valid([]byte(s)) {
		return s, nil
	}

	closed := closeObjects(s)
	if json.Valid([]byte(closed)) {
		return closed, nil
	}

	escaped := escapeLoneBackslashes(closed)
	if json.Valid([]byte(escaped)) {
		return escaped, nil
	}

	doubled := doubleEscape(closed)
	if json.Valid([]byte(doubled)) {
		return doubled, nil
	}

	return s, ErrMarkingParseFailure
}

// closeObjects inserts a missing "}" where an object inside an array was
// left open before the next element or the closing bracket, and closes any
// brackets still open at the end of input.
func closeObjects(s string) string {
	var b strings.Builder
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if n := len(stack); n > 0 && stack[n-1] == '{' {
				stack = stack[:n-1]
			}
		case ']':
			for n := len(stack); n > 1 && stack[n-1] == '{' && stack[n-2] == '['; n = len(stack) {
				b.WriteByte('}')
				stack = stack[:n-1]
			}
			if n := len(stack); n > 0 && stack[n-1] == '[' {
				stack = stack[:n-1]
			}
		case ',':
			if n := len(stack); n > 1 && stack[n-1] == '{' && stack[n-2] == '[' && nextNonSpace(s, i+1) == '{' {
				b.WriteByte('}')
				stack = stack[:n-1]
			}
		}
		b.WriteByte(c)
	}

	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

func nextNonSpace(s string, from int) byte {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return s[i]
		}
	}
	return 0
}

// escapeLoneBackslashes doubles backslashes inside strings that do not start
// a valid JSON escape.
func escapeLoneBackslashes(s string) string {
	var b strings.Builder
	inString := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inString = false
			b.WriteByte(c)
		case '\\':
			if i+1 < len(s) && validEscape(s, i+1) {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
				continue
			}
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func validEscape(s string, i int) bool {
	switch s[i] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+4 >= len(s) {
			return false
		}
		for _, h := range s[i+1 : i+5] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", h) {
				return false
			}
		}
		return true
	}
	return false
}

// doubleEscape treats every backslash as literal, then restores escaped
// quotes so strings stay delimited. LaTeX such as \frac or \times survives
// as text instead of turning into control characters.
func doubleEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `\\"`, `\"`)
}
