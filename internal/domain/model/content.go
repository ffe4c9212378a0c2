package model

// TestCase pairs a program input with the output it should print.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// LevelContent is generated on demand for a level and never persisted by the
// backend.
type LevelContent struct {
	Title       string     `json:"title"`
	Objective   string     `json:"objective"`
	Description string     `json:"description"`
	StarterCode string     `json:"starter_code"`
	Solution    string     `json:"solution"`
	Hints       []string   `json:"hints"`
	TestCases   []TestCase `json:"test_cases"`
	KeyConcepts []string   `json:"key_concepts"`
}

type CodeHint struct {
	Hint       string `json:"hint"`
	Severity   string `json:"severity"`
	LineNumber int    `json:"line_number"`
	Suggestion string `json:"suggestion"`
}
