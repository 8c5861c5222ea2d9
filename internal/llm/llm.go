package llm

import (
	"fmt"
)

// Clients hands out provider-specific generators. BYOLLM callers supply
// their own API key per request; everyone else rides the server's keys
type Clients struct {
	config *Config
}

// creates the client registry for the given server keys. model names and
// generation tuning come from environment variables; an empty openaiKey
// limits openai requests to BYOLLM callers
func NewClients(anthropicKey, openaiKey string) (*Clients, error) {
	config, err := loadConfig(anthropicKey, openaiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	return NewClientsWithConfig(config)
}

// creates the client registry with explicit configuration
func NewClientsWithConfig(config *Config) (*Clients, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Clients{config: config}, nil
}

// returns a generator for the given provider. an empty apiKey uses the
// server's own key; a caller-supplied key marks the request as BYOLLM
func (c *Clients) Generator(provider Provider, apiKey string) (Generator, error) {
	switch provider {
	case ProviderAnthropic, "":
		key := apiKey
		if key == "" {
			key = c.config.AnthropicAPIKey
		}

		return NewAnthropicClient(AnthropicConfig{
			APIKey:      key,
			Model:       c.config.AnthropicModel,
			MaxTokens:   c.config.MaxTokens,
			Temperature: c.config.Temperature,
		}), nil

	case ProviderOpenAI:
		key := apiKey
		if key == "" {
			key = c.config.OpenAIAPIKey
		}

		if key == "" {
			return nil, fmt.Errorf("openai requests require an API key")
		}

		return NewOpenAIClient(OpenAIConfig{
			APIKey:      key,
			Model:       c.config.OpenAIModel,
			MaxTokens:   c.config.MaxTokens,
			Temperature: c.config.Temperature,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// like Generator but requires streaming support
func (c *Clients) StreamingGenerator(provider Provider, apiKey string) (StreamingGenerator, error) {
	gen, err := c.Generator(provider, apiKey)
	if err != nil {
		return nil, err
	}

	streamer, ok := gen.(StreamingGenerator)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support streaming", provider)
	}

	return streamer, nil
}
