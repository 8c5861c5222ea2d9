package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/config"
	"codeberg.org/explainer/server/internal/explain"
	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/storage"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	ledgerStore := ledger.NewPostgresStore(db)
	if err := ledgerStore.Initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	creditLedger := ledger.New(ledgerStore)

	// explanation cache; a hit costs the reader nothing
	cache, err := explain.NewRedisCache(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize explanation cache: %w", err)
	}

	services, err := InitializeServices(ctx, cfg, db, creditLedger, cache)
	if err != nil {
		cache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	router := gin.Default()

	server := &Server{
		db:           db,
		config:       cfg,
		creditLedger: creditLedger,
		cache:        cache,
		services:     services,
		router:       router,
	}

	RegisterRoutes(router, server)

	return server, nil
}
