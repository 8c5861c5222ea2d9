package explain

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/llm"
	"codeberg.org/explainer/server/internal/paywall"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeGenerator stands in for a provider client
type fakeGenerator struct {
	model string
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Model() string {
	return f.model
}

func (f *fakeGenerator) Generate(_ context.Context, _ llm.Request) (*llm.Response, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return &llm.Response{
		Text:  f.text,
		Model: f.model,
		Usage: llm.Usage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func (f *fakeGenerator) GenerateStream(ctx context.Context, req llm.Request, emit func(delta string) error) (*llm.Response, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	for _, word := range strings.SplitAfter(f.text, " ") {
		if err := emit(word); err != nil {
			return nil, err
		}
	}

	return &llm.Response{Text: f.text, Model: f.model}, nil
}

// fakeSource hands out the same generator regardless of provider and
// records the API key it was asked for
type fakeSource struct {
	gen     *fakeGenerator
	lastKey string
}

func (f *fakeSource) Generator(_ llm.Provider, apiKey string) (llm.Generator, error) {
	f.lastKey = apiKey
	return f.gen, nil
}

func (f *fakeSource) StreamingGenerator(_ llm.Provider, apiKey string) (llm.StreamingGenerator, error) {
	f.lastKey = apiKey
	return f.gen, nil
}

// memCache is an in-process Cache for tests
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memCache) Set(_ context.Context, key, explanation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = explanation
	return nil
}

func newTestService(t *testing.T, gen *fakeGenerator) (*Service, *ledger.MemoryStore, *ledger.User, *fakeSource) {
	t.Helper()

	store := ledger.NewMemoryStore()
	store.SetClock(func() time.Time { return baseTime })

	l := ledger.New(store)
	l.SetClock(func() time.Time { return baseTime })

	user, err := store.FindOrCreateByEmail(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("failed to provision user: %v", err)
	}

	source := &fakeSource{gen: gen}
	svc := New(source, paywall.New(l), l, newMemCache())

	return svc, store, user, source
}

func TestExplainForUser_DebitsAfterSuccess(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", text: "An explanation."}
	svc, store, user, _ := newTestService(t, gen)

	result, err := svc.ExplainForUser(context.Background(), user.ID, Input{
		Passage:   "Call me Ishmael.",
		BookTitle: "Moby-Dick",
	})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}

	if result.Explanation != "An explanation." {
		t.Errorf("expected explanation text, got %q", result.Explanation)
	}

	if !result.HourlyGranted {
		t.Error("expected the hourly grant to be claimed for a fresh user")
	}

	if result.CreditsUsed != CostStandard {
		t.Errorf("expected cost %v, got %v", CostStandard, result.CreditsUsed)
	}

	// the grant covered the cost exactly
	if math.Abs(result.CreditsRemaining) > 1e-9 {
		t.Errorf("expected zero credits remaining, got %v", result.CreditsRemaining)
	}

	records := store.UsageRecords(user.ID)
	if len(records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(records))
	}

	if records[0].BookTitle != "Moby-Dick" {
		t.Errorf("expected usage record to carry the book title, got %q", records[0].BookTitle)
	}

	if records[0].IsByollm {
		t.Error("expected server-key request not to be marked BYOLLM")
	}
}

func TestExplainForUser_NoDebitOnProviderFailure(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", err: errors.New("upstream 500")}
	svc, store, user, _ := newTestService(t, gen)

	_, err := svc.ExplainForUser(context.Background(), user.ID, Input{Passage: "Call me Ishmael."})
	if err == nil {
		t.Fatal("expected error from failing provider")
	}

	// the hourly grant was claimed on the way in, but the failed call
	// must not be charged
	loaded, err := store.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}

	if math.Abs(loaded.Credits-ledger.HourlyGrantAmount) > 1e-9 {
		t.Errorf("expected full granted balance %v after provider failure, got %v",
			ledger.HourlyGrantAmount, loaded.Credits)
	}

	if records := store.UsageRecords(user.ID); len(records) != 0 {
		t.Errorf("expected no usage records, got %d", len(records))
	}
}

func TestExplainForUser_DeniedWithoutCredits(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", text: "unused"}
	svc, _, user, _ := newTestService(t, gen)

	// first request claims the grant and spends it
	if _, err := svc.ExplainForUser(context.Background(), user.ID, Input{Passage: "first"}); err != nil {
		t.Fatalf("first explain failed: %v", err)
	}

	// second request inside the cooldown has nothing to spend
	result, err := svc.ExplainForUser(context.Background(), user.ID, Input{Passage: "second"})
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}

	if result.MinutesUntilNextCredit != 60 {
		t.Errorf("expected 60 minutes until next credit, got %d", result.MinutesUntilNextCredit)
	}

	if gen.calls != 1 {
		t.Errorf("expected no provider call for the denied request, got %d calls", gen.calls)
	}
}

func TestExplainForUser_ByollmReducedCost(t *testing.T) {
	gen := &fakeGenerator{model: "gpt-4o-mini", text: "An explanation."}
	svc, store, user, source := newTestService(t, gen)

	result, err := svc.ExplainForUser(context.Background(), user.ID, Input{
		Passage:   "Call me Ishmael.",
		Provider:  llm.ProviderOpenAI,
		LlmAPIKey: "sk-user-supplied",
	})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}

	if source.lastKey != "sk-user-supplied" {
		t.Errorf("expected the caller's key to reach the provider, got %q", source.lastKey)
	}

	if result.CreditsUsed != CostByollm {
		t.Errorf("expected reduced cost %v, got %v", CostByollm, result.CreditsUsed)
	}

	if math.Abs(result.CreditsRemaining-(ledger.HourlyGrantAmount-CostByollm)) > 1e-9 {
		t.Errorf("expected %v remaining, got %v",
			ledger.HourlyGrantAmount-CostByollm, result.CreditsRemaining)
	}

	records := store.UsageRecords(user.ID)
	if len(records) != 1 || !records[0].IsByollm {
		t.Fatalf("expected one BYOLLM usage record, got %+v", records)
	}
}

func TestExplainForUser_CacheHitIsFree(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", text: "An explanation."}
	svc, store, user, _ := newTestService(t, gen)

	input := Input{Passage: "Call me Ishmael.", BookTitle: "Moby-Dick"}

	if _, err := svc.ExplainForUser(context.Background(), user.ID, input); err != nil {
		t.Fatalf("first explain failed: %v", err)
	}

	// identical request inside the cooldown: would be denied without the
	// cache
	result, err := svc.ExplainForUser(context.Background(), user.ID, input)
	if err != nil {
		t.Fatalf("cached explain failed: %v", err)
	}

	if !result.Cached {
		t.Error("expected a cache hit")
	}

	if result.CreditsUsed != 0 {
		t.Errorf("expected cache hit to cost nothing, got %v", result.CreditsUsed)
	}

	if gen.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", gen.calls)
	}

	if records := store.UsageRecords(user.ID); len(records) != 1 {
		t.Errorf("expected 1 usage record, got %d", len(records))
	}
}

func TestExplainForUser_EmptyPassage(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", text: "unused"}
	svc, _, user, _ := newTestService(t, gen)

	if _, err := svc.ExplainForUser(context.Background(), user.ID, Input{}); err == nil {
		t.Fatal("expected error for empty passage")
	}
}

func TestExplainStreamForUser_EmitsDeltas(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", text: "one two three"}
	svc, _, user, _ := newTestService(t, gen)

	var deltas []string
	result, err := svc.ExplainStreamForUser(context.Background(), user.ID,
		Input{Passage: "Call me Ishmael."},
		func(delta string) error {
			deltas = append(deltas, delta)
			return nil
		})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	if len(deltas) < 2 {
		t.Errorf("expected multiple deltas, got %d", len(deltas))
	}

	if strings.Join(deltas, "") != "one two three" {
		t.Errorf("expected deltas to assemble the full text, got %q", strings.Join(deltas, ""))
	}

	if result.CreditsUsed != CostStandard {
		t.Errorf("expected cost %v after stream, got %v", CostStandard, result.CreditsUsed)
	}
}

func TestExplainAnonymous_NoLedgerActivity(t *testing.T) {
	gen := &fakeGenerator{model: "claude-3-5-haiku-20241022", text: "An explanation."}
	svc, store, user, _ := newTestService(t, gen)

	result, err := svc.ExplainAnonymous(context.Background(), Input{Passage: "Call me Ishmael."})
	if err != nil {
		t.Fatalf("anonymous explain failed: %v", err)
	}

	if result.Explanation != "An explanation." {
		t.Errorf("expected explanation text, got %q", result.Explanation)
	}

	loaded, err := store.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}

	if loaded.Credits != 0 {
		t.Errorf("expected anonymous request to leave the ledger alone, got %v credits", loaded.Credits)
	}

	if records := store.UsageRecords(user.ID); len(records) != 0 {
		t.Errorf("expected no usage records, got %d", len(records))
	}
}

func TestCacheKey_DistinguishesInputs(t *testing.T) {
	base := Input{Passage: "Call me Ishmael.", Context: "Chapter 1"}

	same := cacheKey(base, "model-a")
	if cacheKey(base, "model-a") != same {
		t.Error("expected identical inputs to share a key")
	}

	if cacheKey(base, "model-b") == same {
		t.Error("expected a different model to change the key")
	}

	other := base
	other.Context = "Chapter 2"
	if cacheKey(other, "model-a") == same {
		t.Error("expected different context to change the key")
	}
}
