package purchases

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/purchases"
)

// registers Stripe purchase routes. the webhook is unauthenticated; the
// signature check inside the service is its access control
func RegisterRoutes(router *gin.RouterGroup, service *purchases.Service) {
	purchasesGroup := router.Group("/purchases")
	{
		purchasesGroup.POST("/checkout", auth.AuthMiddleware(), CreateCheckoutHandler(service))
		purchasesGroup.POST("/webhook", WebhookHandler(service))
	}
}
