package textutil

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first balanced {...} substring of s. Braces
// inside JSON string literals are ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		if end, ok := matchBrace(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(s string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
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
				return i, true
			}
		}
	}
	return 0, false
}

// ParseJSONObject decodes s as a JSON object. When s is not valid JSON it
// falls back to the first balanced object embedded in s.
func ParseJSONObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err == nil && obj != nil {
		return obj, true
	}

	rest := s
	for {
		candidate, ok := ExtractJSONObject(rest)
		if !ok {
			return nil, false
		}
		obj = nil
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
			return obj, true
		}
		idx := strings.Index(rest, candidate)
		rest = rest[idx+1:]
	}
}
