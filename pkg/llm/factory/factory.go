package factory

import (
	"fmt"

	"ai-topic-assist-be/pkg/llm"
	"ai-topic-assist-be/pkg/llm/ollama"
	"ai-topic-assist-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured provider. "none" (or an empty type)
// returns a nil provider, and callers fall back to their heuristics.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "", "none":
		return nil, nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "huggingface":
		if apiKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", providerType)
		}
		if providerType == "huggingface" && baseURL == "" {
			baseURL = openai.HuggingFaceRouterURL
		}
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
