package llm

import (
	"fmt"
	"os"
	"strconv"
)

// loadConfig combines the caller-supplied provider keys with model and
// tuning settings from environment variables
func loadConfig(anthropicKey, openaiKey string) (*Config, error) {
	if anthropicKey == "" {
		return nil, fmt.Errorf("an anthropic API key is required")
	}

	anthropicModel := os.Getenv("ANTHROPIC_MODEL")
	if anthropicModel == "" {
		anthropicModel = "claude-3-5-haiku-20241022" // default
	}

	// OpenAI is optional: without a key, openai requests require BYOLLM
	openaiModel := os.Getenv("OPENAI_MODEL")
	if openaiModel == "" {
		openaiModel = "gpt-4o-mini" // default
	}

	maxTokens := 1024 // default
	if maxTokensStr := os.Getenv("EXPLANATION_MAX_TOKENS"); maxTokensStr != "" {
		if val, err := strconv.Atoi(maxTokensStr); err == nil {
			maxTokens = val
		}
	}

	temperature := float32(0.7) // default
	if tempStr := os.Getenv("EXPLANATION_TEMPERATURE"); tempStr != "" {
		if val, err := strconv.ParseFloat(tempStr, 32); err == nil {
			temperature = float32(val)
		}
	}

	return &Config{
		AnthropicAPIKey: anthropicKey,
		AnthropicModel:  anthropicModel,
		OpenAIAPIKey:    openaiKey,
		OpenAIModel:     openaiModel,
		MaxTokens:       maxTokens,
		Temperature:     temperature,
	}, nil
}
