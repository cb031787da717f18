package factory

import (
	"fmt"

	"lexai-be/pkg/llm"
	"lexai-be/pkg/llm/gemini"
	"lexai-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// NewDocumentReader returns the file-to-text backend, if the configured
// provider supports one.
func NewDocumentReader(provider llm.LLMProvider) (llm.DocumentReader, bool) {
	reader, ok := provider.(llm.DocumentReader)
	return reader, ok
}
