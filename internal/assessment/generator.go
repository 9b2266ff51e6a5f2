package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeneratorConfig wires Gemini access.
type GeneratorConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
}

// GeminiGenerator produces question sets with Gemini.
type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiGenerator returns a Generator backed by Gemini.
func NewGeminiGenerator(ctx context.Context, cfg GeneratorConfig) (Generator, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if apiKey == "" {
		return nil, errors.New("gemini api key missing")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model, maxTokens: maxTokens}, nil
}

const generatorSystemPrompt = "You write skill assessments. Reply with a JSON array only, no prose and no code fences. " +
	"Each element has the shape {\"prompt\": string, \"options\": [4 strings], \"answer\": int} " +
	"where answer is the zero-based index of the correct option."

// Generate asks Gemini for a question set and parses the JSON reply.
func (g *GeminiGenerator) Generate(ctx context.Context, skill, level string, count int) ([]Question, error) {
	prompt := fmt.Sprintf(
		"Write %d multiple-choice questions testing %s proficiency in %s. Exactly 4 options each, one correct.",
		count, level, skill,
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(generatorSystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(0.4)),
			MaxOutputTokens:   int32(g.maxTokens),
		})
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(resp.Text(), count)
	if err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	return questions, nil
}

// generatedQuestion is the wire shape the model replies with. It exists
// because Question hides the answer index from JSON.
type generatedQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

func parseQuestions(text string, want int) ([]Question, error) {
	payload := extractJSONArray(text)
	if payload == "" {
		return nil, errors.New("no JSON array in output")
	}

	var raw []generatedQuestion
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}

	questions := make([]Question, 0, len(raw))
	for _, q := range raw {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) < 2 {
			continue
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			continue
		}
		questions = append(questions, Question{Prompt: q.Prompt, Options: q.Options, Answer: q.Answer})
		if len(questions) == want {
			break
		}
	}
	if len(questions) == 0 {
		return nil, errors.New("no usable questions in output")
	}
	return questions, nil
}

// extractJSONArray tolerates code fences and surrounding prose.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
