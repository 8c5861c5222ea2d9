package llm

import "context"

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Response struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// produces prose from a prompt against one provider/model
type Generator interface {
	Model() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// a Generator that can emit text deltas as they arrive
type StreamingGenerator interface {
	Generator
	GenerateStream(ctx context.Context, req Request, emit func(delta string) error) (*Response, error)
}

// holds configuration for LLM initialization
type Config struct {
	AnthropicAPIKey string
	AnthropicModel  string // e.g., "claude-3-5-haiku-20241022"

	OpenAIAPIKey string
	OpenAIModel  string // e.g., "gpt-4o-mini"

	MaxTokens   int
	Temperature float32
}
