package curation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// decodeJSON parses a model response into v, tolerating the common
// failure modes of chat output: code fences, prose around the object,
// and trailing commas.
func decodeJSON(raw string, v interface{}) error {
	raw = strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}

	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(raw), v); err == nil {
			return nil
		}
	}

	if inner := outermostObject(raw); inner != "" {
		if err := json.Unmarshal([]byte(inner), v); err == nil {
			return nil
		}
		cleaned := trailingCommaRe.ReplaceAllString(inner, "$1")
		if err := json.Unmarshal([]byte(cleaned), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("response is not valid JSON: %s", truncate(raw, 200))
}

// outermostObject returns the first balanced {...} span in s
func outermostObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
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
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
