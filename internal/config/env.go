package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	stripeKey := os.Getenv("STRIPE_KEY")
	stripeWebhookKey := os.Getenv("STRIPE_WEBHOOK_SECRET")
	libraryPath := os.Getenv("LIBRARY_PATH")
	baseURL := os.Getenv("BASE_URL")
	environment := os.Getenv("ENVIRONMENT")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if anthropicKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
	}

	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if libraryPath == "" {
		libraryPath = "./library"
	}

	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	if environment == "" {
		environment = "development"
	}

	return &Config{
		DatabaseURL:      databaseURL,
		RedisURL:         redisURL,
		AnthropicKey:     anthropicKey,
		OpenAIKey:        openaiKey,
		StripeKey:        stripeKey,
		StripeWebhookKey: stripeWebhookKey,
		LibraryPath:      libraryPath,
		BaseURL:          baseURL,
		Environment:      environment,
	}, nil
}
