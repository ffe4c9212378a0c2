package content

import (
	"encoding/json"
	"strings"

	"pyventure/internal/domain/model"
)

// FallbackHint is served when the hint output cannot be parsed.
var FallbackHint = model.CodeHint{
	Hint:       "Check your syntax and variable names. Make sure they match the requirements.",
	Severity:   "info",
	LineNumber: 1,
	Suggestion: "Review the TODO comments for guidance.",
}

// ParseHint extracts a hint from model output, falling back to FallbackHint
// when no JSON object can be read.
func ParseHint(raw string) (model.CodeHint, bool) {
	s := ExtractJSON(raw)
	if !strings.HasPrefix(s, "{") {
		return FallbackHint, true
	}
	var hint model.CodeHint
	if err := json.Unmarshal([]byte(s), &hint); err != nil {
		return FallbackHint, true
	}
	return hint, false
}
