package content

import (
	"fmt"

	"pyventure/internal/domain/model"
)

// LevelPrompt asks the model for an exercise as a single JSON object.
func LevelPrompt(difficulty, topic string) string {
	return fmt.Sprintf(`Generate a %s-level Python coding exercise focused on %s. 

IMPORTANT: Return ONLY valid JSON without any markdown formatting or code blocks. Use escaped strings for multi-line code.

{
  "title": "Exercise title",
  "objective": "Brief description of what the student will learn",
  "description": "Detailed explanation of the exercise",
  "starter_code": "Python code with TODO comments as a single escaped string",
  "solution": "Complete working solution as a single escaped string",
  "hints": [
    "Hint 1: Specific guidance for the first part",
    "Hint 2: Specific guidance for the second part"
  ],
  "test_cases": [
    {
      "input": "sample input",
      "expected_output": "expected result"
    }
  ],
  "key_concepts": ["concept1", "concept2"]
}

The starter_code should have clear # TODO: comments showing exactly where students need to add or fix code. Make it educational and engaging. Use \\n for line breaks in code strings.`, difficulty, topic)
}

// HintPrompt asks the model to review the student's code against the exercise.
func HintPrompt(c model.LevelContent, userCode string) string {
	return fmt.Sprintf(`You are a helpful Python tutor. A student is working on this exercise:

Exercise: %s
Objective: %s
Expected Solution: %s

Student's current code:
%s

Analyze the student's code and provide a helpful hint. Return ONLY valid JSON:

{
  "hint": "Specific, encouraging hint about what to fix or improve",
  "severity": "info",
  "line_number": 1,
  "suggestion": "Concrete suggestion for improvement"
}

Be encouraging and provide specific guidance without giving away the complete solution.`, c.Title, c.Objective, c.Solution, userCode)
}
