package purchases

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/errors"
	"codeberg.org/explainer/server/internal/logger"
	"codeberg.org/explainer/server/internal/purchases"
)

// stripe webhook payloads are small; cap the body read
const maxWebhookBytes = 1 << 16

// CreateCheckoutHandler godoc
// @Summary Create a Stripe checkout session
// @Description Starts a one-time payment for a credit pack and returns the hosted checkout URL
// @Tags purchases
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Pack to purchase"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/purchases/checkout [post]
// @Security BearerAuth
func CreateCheckoutHandler(service *purchases.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		url, err := service.CreateCheckoutSession(c.Request.Context(), userID, req.PackID)

		if stderrors.Is(err, purchases.ErrUnknownPack) {
			errors.BadRequest(c, "unknown credit pack", nil)
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to create checkout session", err)
			return
		}

		c.JSON(http.StatusOK, CheckoutResponse{CheckoutURL: url})
	}
}

// WebhookHandler godoc
// @Summary Stripe webhook
// @Description Receives payment events from Stripe. Signature-verified; completed checkouts credit the buyer's ledger exactly once
// @Tags purchases
// @Accept json
// @Success 200 {string} string "OK"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/purchases/webhook [post]
func WebhookHandler(service *purchases.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			errors.BadRequest(c, "failed to read webhook payload", err)
			return
		}

		err = service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))

		if stderrors.Is(err, purchases.ErrDuplicateEvent) {
			// already settled; acknowledge so stripe stops retrying
			c.Status(http.StatusOK)
			return
		}

		if err != nil {
			logger.ErrorErr(err, "failed to process stripe webhook")
			errors.BadRequest(c, "invalid webhook", nil)
			return
		}

		c.Status(http.StatusOK)
	}
}
