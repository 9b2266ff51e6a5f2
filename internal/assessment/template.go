package assessment

import (
	"context"
	"fmt"
)

// templateGenerator is the deterministic fallback used when no model is
// configured or a model call fails. The questions are generic self-check
// prompts; the first option is always correct.
type templateGenerator struct{}

// NewTemplateGenerator returns a Generator that needs no external service.
func NewTemplateGenerator() Generator {
	return templateGenerator{}
}

var templatePrompts = []struct {
	prompt  string
	correct string
	wrong   [3]string
}{
	{
		prompt:  "Which practice most improves long-term maintainability when working with %s?",
		correct: "Writing small, focused units with clear interfaces",
		wrong:   [3]string{"Duplicating logic to avoid indirection", "Avoiding all abstraction", "Skipping code review for small changes"},
	},
	{
		prompt:  "When debugging an unexpected failure in %s code, what is the best first step?",
		correct: "Reproduce the failure with a minimal case",
		wrong:   [3]string{"Rewrite the module from scratch", "Silence the error and retry", "Disable the failing test"},
	},
	{
		prompt:  "What is the most reliable way to verify %s behavior before shipping?",
		correct: "Automated tests covering the expected and edge cases",
		wrong:   [3]string{"Manual checks on a developer machine only", "Waiting for user reports", "Reading the code once more"},
	},
	{
		prompt:  "How should errors be handled in production-quality %s code?",
		correct: "Surfaced explicitly and handled at the right boundary",
		wrong:   [3]string{"Ignored when unlikely", "Logged and swallowed everywhere", "Converted to process exits"},
	},
}

func (templateGenerator) Generate(_ context.Context, skill, _ string, count int) ([]Question, error) {
	if count <= 0 {
		count = 1
	}
	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		tpl := templatePrompts[i%len(templatePrompts)]
		questions = append(questions, Question{
			Prompt:  fmt.Sprintf(tpl.prompt, skill),
			Options: []string{tpl.correct, tpl.wrong[0], tpl.wrong[1], tpl.wrong[2]},
			Answer:  0,
		})
	}
	return questions, nil
}
