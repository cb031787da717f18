package assistant

import (
	"context"
	"fmt"

	"lexai-be/pkg/llm"
)

// AnswerInput is the schema-validated input of the answer adapter.
type AnswerInput struct {
	DocumentText string
	Question     string
}

// AnswerOutput is the schema-validated output of the answer adapter.
type AnswerOutput struct {
	Answer string `json:"answer"`
}

// Answerer wraps the answer-question prompt around an LLM backend.
type Answerer struct {
	provider llm.LLMProvider
}

func NewAnswerer(provider llm.LLMProvider) *Answerer {
	return &Answerer{provider: provider}
}

const answerPromptTemplate = `You are an AI assistant helping lawyers find information in legal documents.

Document Text: %s

Question: %s

Respond with ONLY this JSON format: {"answer": "<concise and relevant answer to the question>"}. No other text.`

func (a *Answerer) Answer(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	prompt := fmt.Sprintf(answerPromptTemplate, input.DocumentText, input.Question)

	raw, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	var out AnswerOutput
	if err := decodeModelJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("answer output malformed: %w", err)
	}
	if out.Answer == "" {
		return nil, fmt.Errorf("answer output empty")
	}

	return &out, nil
}
