package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Generator is the structured-output boundary. platform/openai.Client
// satisfies it.
type Generator interface {
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
}

type candidateCitation struct {
	SourceIndex int     `json:"source_index"`
	StartSec    float64 `json:"start_sec"`
	EndSec      float64 `json:"end_sec"`
	Quote       string  `json:"quote"`
	SpeakerName string  `json:"speaker_name"`
}

type candidateAnswer struct {
	Text      string              `json:"text"`
	Citations []candidateCitation `json:"citations"`
}

type answersResult struct {
	Answers []candidateAnswer `json:"answers"`
}

func answersSchema(maxAnswers int) map[string]any {
	if maxAnswers <= 0 || maxAnswers > 5 {
		maxAnswers = 5
	}
	citation := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"source_index": map[string]any{"type": "integer", "description": "Bracketed number of the source the quote came from."},
			"start_sec":    map[string]any{"type": "number"},
			"end_sec":      map[string]any{"type": "number"},
			"quote":        map[string]any{"type": "string", "description": "Word-for-word text copied from the source."},
			"speaker_name": map[string]any{"type": "string"},
		},
		"required": []string{"source_index", "start_sec", "end_sec", "quote", "speaker_name"},
	}
	answer := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"text":      map[string]any{"type": "string"},
			"citations": map[string]any{"type": "array", "items": citation, "maxItems": 8},
		},
		"required": []string{"text", "citations"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"answers": map[string]any{
				"type":     "array",
				"items":    answer,
				"minItems": 1,
				"maxItems": maxAnswers,
			},
		},
		"required": []string{"answers"},
	}
}

// parseAnswers validates the provider's structured output. Any shape
// violation is a provider failure the caller turns into a fallback answer,
// never a panic.
func parseAnswers(raw map[string]any, maxAnswers int) ([]candidateAnswer, error) {
	if maxAnswers <= 0 || maxAnswers > 5 {
		maxAnswers = 5
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode provider output: %w", err)
	}
	var res answersResult
	if err := json.Unmarshal(blob, &res); err != nil {
		return nil, fmt.Errorf("decode provider output: %w", err)
	}
	if len(res.Answers) == 0 {
		return nil, fmt.Errorf("provider returned no answers")
	}
	if len(res.Answers) > maxAnswers {
		res.Answers = res.Answers[:maxAnswers]
	}
	for i := range res.Answers {
		res.Answers[i].Text = strings.TrimSpace(res.Answers[i].Text)
		if res.Answers[i].Text == "" && len(res.Answers[i].Citations) == 0 {
			return nil, fmt.Errorf("answer %d is empty", i)
		}
	}
	return res.Answers, nil
}

type GenerateDeps struct {
	Generator Generator
}

type GenerateInput struct {
	Style      string
	Question   string
	Evidence   string
	MaxAnswers int
}

// Generate is the single parameterized entry point for both prompting
// styles.
func Generate(ctx context.Context, deps GenerateDeps, in GenerateInput) ([]candidateAnswer, error) {
	system := buildSystemPrompt(in.Style)
	user := buildUserPrompt(in.Style, in.Question, in.Evidence)
	raw, err := deps.Generator.GenerateJSON(ctx, system, user, "grounded_answers", answersSchema(in.MaxAnswers))
	if err != nil {
		return nil, fmt.Errorf("generate answers: %w", err)
	}
	return parseAnswers(raw, in.MaxAnswers)
}
