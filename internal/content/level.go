package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"pyventure/internal/domain/model"
)

// Request identifies what content was asked of the model.
type Request struct {
	LevelID    int64
	Topic      string
	Difficulty string
}

// ParseLevelContent extracts level content from model output. The second
// return value reports whether the fallback was used.
func ParseLevelContent(raw string, req Request) (model.LevelContent, bool) {
	var parsed model.LevelContent
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &parsed); err != nil {
		return FallbackLevelContent(req), true
	}
	if len(MissingFields(parsed)) > 0 {
		return FallbackLevelContent(req), true
	}
	return parsed, false
}

// MissingFields lists required fields that are absent or empty. An empty
// hints list counts as present; a missing or null one does not.
func MissingFields(c model.LevelContent) []string {
	var missing []string
	if c.Title == "" {
		missing = append(missing, "title")
	}
	if c.Objective == "" {
		missing = append(missing, "objective")
	}
	if c.Description == "" {
		missing = append(missing, "description")
	}
	if c.StarterCode == "" {
		missing = append(missing, "starter_code")
	}
	if c.Solution == "" {
		missing = append(missing, "solution")
	}
	if c.Hints == nil {
		missing = append(missing, "hints")
	}
	return missing
}

// FallbackLevelContent is the fixed template served when the model output
// cannot be used. It depends only on the level id and topic.
func FallbackLevelContent(req Request) model.LevelContent {
	topic := req.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	n := req.LevelID
	done := fmt.Sprintf("Level %d completed!", n)

	return model.LevelContent{
		Title:       fmt.Sprintf("Level %d: Python %s", n, upperFirst(topic)),
		Objective:   fmt.Sprintf("Learn %s in Python", topic),
		Description: fmt.Sprintf("Complete the code to practice %s. Follow the TODO comments to guide your implementation.", topic),
		StarterCode: fmt.Sprintf("# TODO: Write your code here for %s\n# Start by reading the problem carefully\nprint(\"Starting Level %d\")", topic, n),
		Solution:    fmt.Sprintf("# Solution for %s\nprint(%q)", topic, done),
		Hints: []string{
			fmt.Sprintf("Focus on %s concepts", topic),
			"Read the TODO comments carefully",
			"Test your code step by step",
		},
		TestCases:   []model.TestCase{{Input: "", ExpectedOutput: done}},
		KeyConcepts: []string{strings.Split(strings.Replace(topic, " and ", ", ", 1), " ")[0]},
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
