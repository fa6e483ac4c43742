// Package textutil holds the small text helpers shared by the interview components.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var spaces = regexp.MustCompile(`\s+`)

// Normalize collapses runs of whitespace into single spaces and trims the result.
func Normalize(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// IsBlank reports whether s has no visible characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ContainsFold reports whether substr is within s, ignoring case.
// An empty substr never matches.
func ContainsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ContainsWord reports whether word occurs in s as a whole word, ignoring case.
// "end" matches "I want to end this" but not "backend" or "front-end".
func ContainsWord(s, word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}
	lower := strings.ToLower(s)
	for offset := 0; offset < len(lower); {
		idx := strings.Index(lower[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if isBoundary(lower, start-1) && isBoundary(lower, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-')
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
