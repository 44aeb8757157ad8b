package llm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxContentLength caps user text embedded into prompts, in characters.
const maxContentLength = 10000

// injectionPattern matches instruction phrases used for prompt injection.
var injectionPattern = regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(previous|above|all)`)

// Sanitize neutralizes user-provided text before it is embedded in a prompt:
// injection phrases are replaced with a placeholder, triple backticks are
// escaped so text cannot break out of a fenced block, and overlong content is
// truncated with a marker.
func Sanitize(text string) string {
	filtered := injectionPattern.ReplaceAllString(text, "[filtered]")
	escaped := strings.ReplaceAll(filtered, "```", "'''")

	if utf8.RuneCountInString(escaped) > maxContentLength {
		runes := []rune(escaped)
		return string(runes[:maxContentLength]) + "...[truncated]"
	}
	return escaped
}
