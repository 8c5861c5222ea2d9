package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/explainer/server/internal/config"
	"codeberg.org/explainer/server/internal/explain"
	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/library"
	"codeberg.org/explainer/server/internal/llm"
	"codeberg.org/explainer/server/internal/paywall"
	"codeberg.org/explainer/server/internal/purchases"
)

// creates and configures all service clients
func InitializeServices(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, creditLedger *ledger.Ledger, cache *explain.RedisCache) (*Services, error) {
	llmClients, err := llm.NewClients(cfg.AnthropicKey, cfg.OpenAIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM clients: %w", err)
	}

	gate := paywall.New(creditLedger)
	explainService := explain.New(llmClients, gate, creditLedger, cache)

	libraryStore := library.NewPostgresStore(db)
	if err := libraryStore.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize library schema: %w", err)
	}

	libraryService, err := library.New(libraryStore, cfg.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create library service: %w", err)
	}

	purchaseStore := purchases.NewPostgresStore(db)
	if err := purchaseStore.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize purchases schema: %w", err)
	}

	purchaseService := purchases.New(creditLedger, purchaseStore, purchases.Config{
		SecretKey:     cfg.StripeKey,
		WebhookSecret: cfg.StripeWebhookKey,
		BaseURL:       cfg.BaseURL,
		Environment:   cfg.Environment,
	})

	return &Services{
		LLM:       llmClients,
		Gate:      gate,
		Explain:   explainService,
		Library:   libraryService,
		Purchases: purchaseService,
	}, nil
}
