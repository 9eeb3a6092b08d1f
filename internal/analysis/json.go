package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches ```json ... ``` style markdown code fences.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Extract locates the first balanced JSON object in the assistant's raw
// output and unmarshals it into an Analysis. The assistant is asked to reply
// with JSON only, but in practice the object arrives wrapped in prose or
// markdown fences, so the whole response is scanned.
func Extract(raw string) (*Analysis, error) {
	candidate, ok := firstJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, truncate(raw, 200))
	}

	var a Analysis
	if err := json.Unmarshal([]byte(candidate), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	a.Normalize()
	return &a, nil
}

// firstJSONObject returns the first brace-balanced substring of s.
// Markdown fences are stripped first so a fenced object wins over stray
// braces in surrounding prose. Braces inside JSON strings are ignored.
func firstJSONObject(s string) (string, bool) {
	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
