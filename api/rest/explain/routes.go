package explain

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/explain"
)

// registers explanation routes
func RegisterRoutes(router *gin.RouterGroup, service *explain.Service, secureCookies bool, rateLimit gin.HandlerFunc) {
	handlers := []gin.HandlerFunc{auth.OptionalAuthMiddleware()}

	if rateLimit != nil {
		handlers = append(handlers, rateLimit)
	}

	handlers = append(handlers, Handler(service, secureCookies))

	router.POST("/explain", handlers...)
}
