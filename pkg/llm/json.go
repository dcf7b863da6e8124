package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Reasoning models may prefix their output with <think>...</think>.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSON pulls the JSON payload out of a model response that may be
// wrapped in think tags, markdown code fences, or prose. It returns the
// first balanced object or array that validates.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	// Whichever delimiter appears first wins; fall through to the other.
	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if candidate, ok := balancedRegion(cleaned, '{', '}'); ok && json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	if arrStart >= 0 {
		if candidate, ok := balancedRegion(cleaned, '[', ']'); ok && json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	if trimmed := strings.TrimSpace(cleaned); json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// balancedRegion returns the first substring delimited by open/close with
// matching nesting depth. String literals are skipped so braces inside
// values do not unbalance the scan.
func balancedRegion(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONResponse extracts the JSON payload and unmarshals it into T.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	payload, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}

	return result, nil
}
