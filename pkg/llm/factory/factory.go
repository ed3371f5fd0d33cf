package factory

import (
	"fmt"

	"ai-helpdesk-be/pkg/llm"
	"ai-helpdesk-be/pkg/llm/huggingface"
	"ai-helpdesk-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
