package data

import (
	"errors"
	"strings"
)

// SanitizeAnswer pulls the first balanced JSON object out of an LLM
// completion, tolerating prose or code fences around it.
func SanitizeAnswer(ans string) (string, error) {
	start := strings.IndexByte(ans, '{')
	if start < 0 {
		return "", errors.New("error sanitizing answer")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(ans); i++ {
		c := ans[i]
		if inString {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return ans[start : i+1], nil
			}
		}
	}

	return "", errors.New("error sanitizing answer")
}
