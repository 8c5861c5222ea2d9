package credits

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/purchases"
)

// registers credit and purchase routes
func RegisterRoutes(router *gin.RouterGroup, creditLedger *ledger.Ledger, purchaseService *purchases.Service) {
	creditsGroup := router.Group("/credits")
	{
		creditsGroup.GET("", auth.AuthMiddleware(), GetBalanceHandler(creditLedger))
		creditsGroup.POST("/claim", auth.AuthMiddleware(), ClaimHourlyHandler(creditLedger))
		creditsGroup.GET("/history", auth.AuthMiddleware(), GetHistoryHandler(creditLedger))
		creditsGroup.GET("/packs", ListPacksHandler(purchaseService))
		creditsGroup.POST("/purchase", auth.AuthMiddleware(), PurchaseHandler(purchaseService))
	}
}
