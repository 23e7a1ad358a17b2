package factory

import (
	"fmt"

	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/llm/gemini"
	"manual-assistant-be/pkg/llm/ollama"
)

// NewLLMProvider builds a provider from config strings.
func NewLLMProvider(providerName, modelName, ollamaBaseURL, geminiApiKey string) (llm.Provider, error) {
	switch providerName {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "gemini":
		if geminiApiKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(geminiApiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", providerName)
	}
}
