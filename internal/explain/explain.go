package explain

import (
	"context"
	"fmt"

	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/llm"
	"codeberg.org/explainer/server/internal/logger"
	"codeberg.org/explainer/server/internal/paywall"
)

// GeneratorSource hands out generators per provider. satisfied by
// llm.Clients
type GeneratorSource interface {
	Generator(provider llm.Provider, apiKey string) (llm.Generator, error)
	StreamingGenerator(provider llm.Provider, apiKey string) (llm.StreamingGenerator, error)
}

// Service produces passage explanations. identified requests go through
// the paywall and debit the ledger only after the provider call succeeds;
// anonymous requests skip the ledger entirely and are capped by the
// cookie counter at the HTTP layer
type Service struct {
	source GeneratorSource
	gate   *paywall.Gate
	ledger *ledger.Ledger
	cache  Cache
}

// creates the explanation service. cache may be nil to disable caching
func New(source GeneratorSource, gate *paywall.Gate, l *ledger.Ledger, cache Cache) *Service {
	return &Service{
		source: source,
		gate:   gate,
		ledger: l,
		cache:  cache,
	}
}

// Cost returns the credit cost of a request: the reduced BYOLLM rate
// when the caller brings their own provider key
func Cost(input Input) float64 {
	if input.LlmAPIKey != "" {
		return CostByollm
	}

	return CostStandard
}

// ExplainForUser runs an explanation for an identified user.
//
// the paywall decision (including the hourly grant) happens before the
// provider call, but the debit happens only after the provider returns
// text. a failed provider call costs nothing. cache hits bypass both the
// paywall and the ledger
func (s *Service) ExplainForUser(ctx context.Context, userID string, input Input) (*Result, error) {
	if input.Passage == "" {
		return nil, fmt.Errorf("passage cannot be empty")
	}

	gen, err := s.source.Generator(input.Provider, input.LlmAPIKey)
	if err != nil {
		return nil, err
	}

	if result := s.lookupCache(ctx, input, gen.Model()); result != nil {
		if balance, err := s.ledger.GetBalance(ctx, userID); err == nil {
			result.CreditsRemaining = balance.Credits
		}

		return result, nil
	}

	cost := Cost(input)

	decision, err := s.gate.Decide(ctx, userID, cost)
	if err != nil {
		return nil, fmt.Errorf("paywall check failed: %w", err)
	}

	if !decision.Allowed {
		return &Result{
			CreditsRemaining:       decision.CurrentCredits,
			HourlyGranted:          decision.HourlyGranted,
			MinutesUntilNextCredit: decision.MinutesUntilNextCredit,
		}, ErrPaymentRequired
	}

	resp, err := gen.Generate(ctx, llm.Request{
		SystemPrompt: buildSystemPrompt(input),
		Messages:     []llm.Message{{Role: "user", Content: buildUserMessage(input)}},
		MaxTokens:    input.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("explanation failed: %w", err)
	}

	return s.settle(ctx, userID, input, decision, resp, cost), nil
}

// ExplainStreamForUser is ExplainForUser with text deltas emitted as they
// arrive. a cache hit is emitted as a single delta
func (s *Service) ExplainStreamForUser(ctx context.Context, userID string, input Input, emit func(delta string) error) (*Result, error) {
	if input.Passage == "" {
		return nil, fmt.Errorf("passage cannot be empty")
	}

	gen, err := s.source.StreamingGenerator(input.Provider, input.LlmAPIKey)
	if err != nil {
		return nil, err
	}

	if result := s.lookupCache(ctx, input, gen.Model()); result != nil {
		if err := emit(result.Explanation); err != nil {
			return nil, fmt.Errorf("stream consumer failed: %w", err)
		}

		if balance, err := s.ledger.GetBalance(ctx, userID); err == nil {
			result.CreditsRemaining = balance.Credits
		}

		return result, nil
	}

	cost := Cost(input)

	decision, err := s.gate.Decide(ctx, userID, cost)
	if err != nil {
		return nil, fmt.Errorf("paywall check failed: %w", err)
	}

	if !decision.Allowed {
		return &Result{
			CreditsRemaining:       decision.CurrentCredits,
			HourlyGranted:          decision.HourlyGranted,
			MinutesUntilNextCredit: decision.MinutesUntilNextCredit,
		}, ErrPaymentRequired
	}

	resp, err := gen.GenerateStream(ctx, llm.Request{
		SystemPrompt: buildSystemPrompt(input),
		Messages:     []llm.Message{{Role: "user", Content: buildUserMessage(input)}},
		MaxTokens:    input.MaxTokens,
	}, emit)
	if err != nil {
		return nil, fmt.Errorf("explanation failed: %w", err)
	}

	return s.settle(ctx, userID, input, decision, resp, cost), nil
}

// ExplainAnonymous runs an explanation without touching the ledger. the
// anonymous usage cap lives in the HTTP layer, not here
func (s *Service) ExplainAnonymous(ctx context.Context, input Input) (*Result, error) {
	if input.Passage == "" {
		return nil, fmt.Errorf("passage cannot be empty")
	}

	gen, err := s.source.Generator(input.Provider, input.LlmAPIKey)
	if err != nil {
		return nil, err
	}

	if result := s.lookupCache(ctx, input, gen.Model()); result != nil {
		return result, nil
	}

	resp, err := gen.Generate(ctx, llm.Request{
		SystemPrompt: buildSystemPrompt(input),
		Messages:     []llm.Message{{Role: "user", Content: buildUserMessage(input)}},
		MaxTokens:    input.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("explanation failed: %w", err)
	}

	s.storeCache(ctx, input, resp)

	return &Result{
		Explanation: resp.Text,
		Model:       resp.Model,
	}, nil
}

// debits the ledger for a successful provider call and caches the text.
// a debit failure after the provider already answered is logged but does
// not withhold the explanation from the caller
func (s *Service) settle(ctx context.Context, userID string, input Input, decision *paywall.Decision, resp *llm.Response, cost float64) *Result {
	result := &Result{
		Explanation:   resp.Text,
		Model:         resp.Model,
		CreditsUsed:   cost,
		HourlyGranted: decision.HourlyGranted,
	}

	provider := input.Provider
	if provider == "" {
		provider = llm.ProviderAnthropic
	}

	user, err := s.ledger.Debit(ctx, userID, cost, ledger.UsageMetadata{
		Provider:  string(provider),
		Model:     resp.Model,
		IsByollm:  input.LlmAPIKey != "",
		BookTitle: input.BookTitle,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to debit after successful explanation",
			"user_id", userID, "cost", cost)

		result.CreditsRemaining = decision.CurrentCredits
	} else {
		result.CreditsRemaining = user.Credits
	}

	s.storeCache(ctx, input, resp)

	return result
}

func (s *Service) lookupCache(ctx context.Context, input Input, model string) *Result {
	if s.cache == nil {
		return nil
	}

	text, err := s.cache.Get(ctx, cacheKey(input, model))
	if err != nil {
		logger.ErrorErr(err, "explanation cache lookup failed")
		return nil
	}

	if text == "" {
		return nil
	}

	return &Result{
		Explanation: text,
		Model:       model,
		Cached:      true,
	}
}

func (s *Service) storeCache(ctx context.Context, input Input, resp *llm.Response) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey(input, resp.Model), resp.Text); err != nil {
		logger.ErrorErr(err, "failed to cache explanation")
	}
}
