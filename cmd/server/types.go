package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/explainer/server/internal/config"
	"codeberg.org/explainer/server/internal/explain"
	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/library"
	"codeberg.org/explainer/server/internal/llm"
	"codeberg.org/explainer/server/internal/paywall"
	"codeberg.org/explainer/server/internal/purchases"
)

// holds all dependencies and state for the API server
type Server struct {
	db           *pgxpool.Pool
	config       *config.Config
	creditLedger *ledger.Ledger
	cache        *explain.RedisCache
	services     *Services
	router       *gin.Engine
}

// holds all service clients built on top of the core ledger
type Services struct {
	LLM       *llm.Clients
	Gate      *paywall.Gate
	Explain   *explain.Service
	Library   *library.Service
	Purchases *purchases.Service
}
