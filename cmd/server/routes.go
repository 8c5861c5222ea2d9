package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/api/rest/auth"
	"codeberg.org/explainer/server/api/rest/credits"
	"codeberg.org/explainer/server/api/rest/explain"
	"codeberg.org/explainer/server/api/rest/health"
	"codeberg.org/explainer/server/api/rest/library"
	"codeberg.org/explainer/server/api/rest/purchases"
	"codeberg.org/explainer/server/api/websocket"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.GET("/health", health.Handler)

	secureCookies := server.config.Environment == "production"

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.creditLedger)
		credits.RegisterRoutes(v1, server.creditLedger, server.services.Purchases)
		explain.RegisterRoutes(v1, server.services.Explain, secureCookies, ExplainRateLimiter(server))
		library.RegisterRoutes(v1, server.services.Library)
		purchases.RegisterRoutes(v1, server.services.Purchases)
	}

	websocket.RegisterRoutes(router, server.services.Explain)
}
