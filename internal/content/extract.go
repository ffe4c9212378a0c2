// Package content turns free-text model output into level content and hints.
// Parsing is total: malformed output degrades to a fixed fallback, never to
// an error.
package content

import (
	"regexp"
	"strings"
)

var (
	jsonFence  = regexp.MustCompile("```json\\s*")
	plainFence = regexp.MustCompile("```\\s*")
)

// ExtractJSON strips code fences and returns the text between the first '{'
// and the last '}' inclusive. If either brace is missing the fence-stripped
// text is returned unchanged.
func ExtractJSON(text string) string {
	s := jsonFence.ReplaceAllString(text, "")
	s = plainFence.ReplaceAllString(s, "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
