package llm

import (
	"encoding/json"
	"strings"
)

// DecodeJSON parses model output into dest, tolerating markdown fences and
// surrounding prose. Returns false when no valid JSON object can be
// extracted; the caller substitutes its own default value in that case.
func DecodeJSON(content string, dest any) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}

	if json.Unmarshal([]byte(content), dest) == nil {
		return true
	}

	if extracted, ok := extractJSON(content); ok {
		return json.Unmarshal([]byte(extracted), dest) == nil
	}

	return false
}

// extractJSON pulls a JSON object out of output that wraps it in code fences
// or extra text: fenced block first, then the outermost brace pair.
func extractJSON(content string) (string, bool) {
	if start := strings.Index(content, "```"); start >= 0 {
		inner := content[start+3:]
		// Skip an optional language tag on the fence line.
		if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
			inner = inner[nl+1:]
		}
		if end := strings.Index(inner, "```"); end >= 0 {
			candidate := strings.TrimSpace(inner[:end])
			if strings.HasPrefix(candidate, "{") {
				return candidate, true
			}
		}
	}

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		return content[start : end+1], true
	}

	return "", false
}
