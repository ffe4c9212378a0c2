package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTopic is used for levels without a catalog entry.
const DefaultTopic = "basic Python concepts"

var defaultTopics = map[int64]string{
	1: "variables and basic data types",
	2: "conditional statements (if/else)",
	3: "loops (for and while)",
	4: "functions and parameters",
	5: "lists and basic operations",
	6: "dictionaries and key-value pairs",
	7: "string manipulation",
	8: "error handling with try/except",
}

// Topics maps level ids to the Python topic their exercise covers.
type Topics struct {
	byLevel map[int64]string
}

func DefaultTopics() *Topics {
	m := make(map[int64]string, len(defaultTopics))
	for k, v := range defaultTopics {
		m[k] = v
	}
	return &Topics{byLevel: m}
}

// topicsFile is the YAML layout of a topics override file:
//
//	topics:
//	  1: variables and basic data types
//	  9: classes and objects
type topicsFile struct {
	Topics map[int64]string `yaml:"topics"`
}

// LoadTopics reads a YAML override file on top of the defaults. An empty path
// returns the defaults.
func LoadTopics(path string) (*Topics, error) {
	t := DefaultTopics()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	var f topicsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse topics file %s: %w", path, err)
	}
	for id, topic := range f.Topics {
		if topic != "" {
			t.byLevel[id] = topic
		}
	}
	return t, nil
}

func (t *Topics) For(levelID int64) string {
	if topic, ok := t.byLevel[levelID]; ok {
		return topic
	}
	return DefaultTopic
}
