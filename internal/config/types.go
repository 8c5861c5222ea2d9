package config

type Config struct {
	DatabaseURL      string
	RedisURL         string
	AnthropicKey     string
	OpenAIKey        string
	StripeKey        string
	StripeWebhookKey string
	LibraryPath      string
	BaseURL          string
	Environment      string
}
