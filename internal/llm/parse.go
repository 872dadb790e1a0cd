package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON is the single boundary between unreliable completion-service
// replies and typed business logic. It tolerates markdown code fences and
// leading/trailing prose around the JSON body, and returns an error (never a
// panic) for anything it cannot decode. Callers degrade per their own policy.
func ParseJSON(reply string, v interface{}) error {
	cleaned := ExtractJSONBody(reply)
	if cleaned == "" {
		return fmt.Errorf("no JSON found in reply")
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}

	return nil
}

// ExtractJSONBody strips markdown fences and surrounding prose, returning the
// first balanced JSON object or array in the reply, or "" when there is none.
func ExtractJSONBody(reply string) string {
	s := strings.TrimSpace(reply)

	// Models often wrap JSON in markdown code blocks
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}
	if s[0] == '{' || s[0] == '[' {
		if end := balancedEnd(s); end > 0 {
			return s[:end]
		}
		return s
	}

	// Prose around the JSON: find the first object or array start
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	rest := s[start:]
	if end := balancedEnd(rest); end > 0 {
		return rest[:end]
	}
	return rest
}

// balancedEnd returns the index one past the close of the first balanced
// object/array in s, or -1 when brackets never balance. String literals and
// escapes are honored.
func balancedEnd(s string) int {
	open := s[0]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '[':
		close = ']'
	default:
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
