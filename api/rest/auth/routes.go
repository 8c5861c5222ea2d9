package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/ledger"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, creditLedger *ledger.Ledger) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/:provider", BeginAuthHandler())
		authGroup.GET("/:provider/callback", CallbackHandler(creditLedger))
		authGroup.POST("/logout", LogoutHandler())
		authGroup.GET("/me", auth.AuthMiddleware(), GetCurrentUserHandler(creditLedger))
	}
}
