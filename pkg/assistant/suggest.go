package assistant

import (
	"context"
	"fmt"

	"lexai-be/pkg/llm"
)

// SuggestInput is the schema-validated input of the suggestion adapter.
type SuggestInput struct {
	DocumentContent  string
	PreviousQuestion string
}

// SuggestOutput carries the follow-up questions in the order the model
// returned them. Callers decide how many to keep.
type SuggestOutput struct {
	SuggestedQuestions []string `json:"suggested_questions"`
}

// Suggester wraps the follow-up-question prompt around an LLM backend.
type Suggester struct {
	provider llm.LLMProvider
}

func NewSuggester(provider llm.LLMProvider) *Suggester {
	return &Suggester{provider: provider}
}

const suggestPromptTemplate = `You are an AI assistant helping lawyers explore legal documents more effectively. Given the content of a document and the lawyer's previous question, generate a list of suggested follow-up questions that the lawyer might find useful.

Document Content: %s

Previous Question: %s

Respond with ONLY this JSON format: {"suggested_questions": ["<question>", ...]}. No other text.`

func (s *Suggester) Suggest(ctx context.Context, input SuggestInput) (*SuggestOutput, error) {
	prompt := fmt.Sprintf(suggestPromptTemplate, input.DocumentContent, input.PreviousQuestion)

	raw, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("suggestion generation failed: %w", err)
	}

	var out SuggestOutput
	if err := decodeModelJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("suggestion output malformed: %w", err)
	}

	return &out, nil
}
