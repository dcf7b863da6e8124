// Package jsonutil helps with loosely-typed JSON coming back from LLMs.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases where
// LLMs return numbers or booleans instead of strings. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Try string first
	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// Try number
	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	// Try boolean
	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Fallback: return raw string representation
	return string(raw)
}

// FlexibleStringList converts a json.RawMessage to a string slice, handling
// cases where LLMs return a single string, a comma-free scalar, or a list of
// mixed scalars instead of a string array. Returns nil for null/empty.
func FlexibleStringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	// Try array of raw values, coercing each element
	var rawList []json.RawMessage
	if err := json.Unmarshal(raw, &rawList); err == nil {
		out := make([]string, 0, len(rawList))
		for _, item := range rawList {
			if s := FlexibleStringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	// Single scalar
	if s := FlexibleStringValue(raw); s != "" {
		return []string{s}
	}
	return nil
}
