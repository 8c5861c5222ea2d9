package credits

import (
	stderrors "errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/errors"
	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/purchases"
)

// GetBalanceHandler godoc
// @Summary Get credit balance
// @Description Current balance, hourly-grant eligibility, and wait until the next free credit
// @Tags credits
// @Produce json
// @Success 200 {object} BalanceResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/credits [get]
// @Security BearerAuth
func GetBalanceHandler(creditLedger *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		balance, err := creditLedger.GetBalance(c.Request.Context(), userID)
		if stderrors.Is(err, ledger.ErrNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load balance", err)
			return
		}

		eligible, err := creditLedger.CanGrantHourly(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to check credit eligibility", err)
			return
		}

		wait, err := creditLedger.TimeUntilNextHourly(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to compute credit wait", err)
			return
		}

		c.JSON(http.StatusOK, BalanceResponse{
			Credits:          balance.Credits,
			SubscriptionTier: balance.SubscriptionTier,
			LastHourlyCredit: balance.LastHourlyCredit,
			HourlyEligible:   eligible,
			MinutesUntilNext: int(math.Ceil(wait.Minutes())),
		})
	}
}

// ClaimHourlyHandler godoc
// @Summary Claim the hourly free credit
// @Description Issues the hourly credit if the cooldown elapsed. A 409 means the grant is still cooling down
// @Tags credits
// @Produce json
// @Success 200 {object} ClaimResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/credits/claim [post]
// @Security BearerAuth
func ClaimHourlyHandler(creditLedger *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := creditLedger.GrantHourly(c.Request.Context(), userID)

		if stderrors.Is(err, ledger.ErrNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if stderrors.Is(err, ledger.ErrNotEligible) {
			wait, waitErr := creditLedger.TimeUntilNextHourly(c.Request.Context(), userID)
			if waitErr != nil {
				errors.InternalError(c, "failed to compute credit wait", waitErr)
				return
			}

			c.JSON(http.StatusConflict, ClaimResponse{
				Granted:          false,
				MinutesUntilNext: int(math.Ceil(wait.Minutes())),
			})

			return
		}

		if err != nil {
			errors.InternalError(c, "failed to claim hourly credit", err)
			return
		}

		c.JSON(http.StatusOK, ClaimResponse{
			Credits: user.Credits,
			Granted: true,
		})
	}
}

// GetHistoryHandler godoc
// @Summary Get transaction history
// @Description Recent ledger entries, newest first
// @Tags credits
// @Produce json
// @Param limit query int false "Max entries (default 50, cap 100)"
// @Success 200 {object} HistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/credits/history [get]
// @Security BearerAuth
func GetHistoryHandler(creditLedger *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0")) //nolint:errcheck // bad input falls back to the default

		transactions, err := creditLedger.History(c.Request.Context(), userID, limit)
		if err != nil {
			errors.InternalError(c, "failed to load history", err)
			return
		}

		if transactions == nil {
			transactions = []ledger.Transaction{}
		}

		c.JSON(http.StatusOK, HistoryResponse{Transactions: transactions})
	}
}

// ListPacksHandler godoc
// @Summary List credit packs
// @Description The purchasable credit packs with prices
// @Tags credits
// @Produce json
// @Success 200 {object} PacksResponse
// @Router /api/v1/credits/packs [get]
func ListPacksHandler(purchaseService *purchases.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, PacksResponse{Packs: purchaseService.Packs()})
	}
}

// PurchaseHandler godoc
// @Summary Purchase a credit pack (simulated)
// @Description Credits a pack without payment. Disabled in production; real payments go through the Stripe checkout endpoint
// @Tags credits
// @Accept json
// @Produce json
// @Param request body PurchaseRequest true "Pack to purchase"
// @Success 200 {object} PurchaseResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/credits/purchase [post]
// @Security BearerAuth
func PurchaseHandler(purchaseService *purchases.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := purchaseService.SimulatePurchase(c.Request.Context(), userID, req.PackID)

		if stderrors.Is(err, purchases.ErrSimulationDisabled) {
			errors.Forbidden(c, "simulated purchases are disabled; use the checkout endpoint")
			return
		}

		if stderrors.Is(err, purchases.ErrUnknownPack) {
			errors.BadRequest(c, "unknown credit pack", nil)
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to settle purchase", err)
			return
		}

		c.JSON(http.StatusOK, PurchaseResponse{
			Credits: user.Credits,
			Pack:    req.PackID,
		})
	}
}
