package explain

import (
	"context"
	"errors"

	"codeberg.org/explainer/server/internal/llm"
)

const (
	// CostStandard is the credit cost of an explanation served with the
	// server's own API keys
	CostStandard = 1.0

	// CostByollm is the reduced cost when the caller supplies their own
	// provider API key
	CostByollm = 0.2
)

// ErrPaymentRequired is returned when the paywall denies the request.
// the accompanying Result carries the denial details
var ErrPaymentRequired = errors.New("insufficient credits")

// Input is a single explanation request
type Input struct {
	Passage   string       `json:"passage"`
	Context   string       `json:"context,omitempty"`
	BookTitle string       `json:"book_title,omitempty"`
	Provider  llm.Provider `json:"provider,omitempty"`
	LlmAPIKey string       `json:"llm_api_key,omitempty"`
	MaxTokens int          `json:"-"`
}

// Result is the outcome of an explanation request
type Result struct {
	Explanation string `json:"explanation"`
	Model       string `json:"model"`
	Cached      bool   `json:"cached"`

	// credit accounting after the request
	CreditsUsed      float64 `json:"credits_used"`
	CreditsRemaining float64 `json:"credits_remaining"`
	HourlyGranted    bool    `json:"hourly_granted"`

	// populated on denial
	MinutesUntilNextCredit int `json:"minutes_until_next_credit,omitempty"`
}

// Cache stores finished explanations so repeated requests for the same
// passage are free
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, explanation string) error
}
