// Package grading decides whether a playground run solved the exercise.
//
// The comparison is intentionally lenient: a run passes when any comparison
// mode matches any test case. Tightening it would change outcomes for
// existing exercises.
package grading

import (
	"strings"

	"pyventure/internal/domain/model"
)

// Mode names one way of comparing actual and expected output.
type Mode string

const (
	ModeExact           Mode = "exact"
	ModeCaseInsensitive Mode = "case_insensitive"
	ModeActualContains  Mode = "actual_contains_expected"
	ModeExpectedContain Mode = "expected_contains_actual"
	ModeCollapsedSpace  Mode = "collapsed_whitespace"
	ModeNoSpace         Mode = "no_whitespace"
)

// Verdict explains a Check result. Mode and TestCase are only set on a pass
// against test cases.
type Verdict struct {
	Correct  bool `json:"correct"`
	Mode     Mode `json:"mode,omitempty"`
	TestCase *int `json:"test_case,omitempty"`
}

// Check grades a run from its captured output.
//
// With no test cases a run is correct iff stderr is empty. Otherwise both
// sides are trimmed and the first matching (test case, mode) pair wins.
func Check(stdout, stderr string, testCases []model.TestCase) Verdict {
	if len(testCases) == 0 {
		return Verdict{Correct: stderr == ""}
	}

	actual := strings.TrimSpace(stdout)
	for i, tc := range testCases {
		if mode, ok := Compare(actual, tc.ExpectedOutput); ok {
			idx := i
			return Verdict{Correct: true, Mode: mode, TestCase: &idx}
		}
	}
	return Verdict{}
}

// IsCorrect is Check reduced to its boolean.
func IsCorrect(stdout, stderr string, testCases []model.TestCase) bool {
	return Check(stdout, stderr, testCases).Correct
}

// Compare reports the first mode under which actual matches expected.
func Compare(actual, expected string) (Mode, bool) {
	a := strings.TrimSpace(actual)
	e := strings.TrimSpace(expected)

	switch {
	case a == e:
		return ModeExact, true
	case strings.EqualFold(a, e):
		return ModeCaseInsensitive, true
	}

	// Substring checks ignore case, so "hello world" still answers "Hello".
	la, le := strings.ToLower(a), strings.ToLower(e)
	switch {
	case strings.Contains(la, le):
		return ModeActualContains, true
	case strings.Contains(le, la):
		return ModeExpectedContain, true
	case collapseSpace(a) == collapseSpace(e):
		return ModeCollapsedSpace, true
	case stripSpace(a) == stripSpace(e):
		return ModeNoSpace, true
	}
	return "", false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
