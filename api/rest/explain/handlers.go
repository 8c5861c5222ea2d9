package explain

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/anonusage"
	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/errors"
	"codeberg.org/explainer/server/internal/explain"
	"codeberg.org/explainer/server/internal/llm"
)

// Handler godoc
// @Summary Explain a passage
// @Description Explains the selected passage. Authenticated requests go through the credit paywall; anonymous requests get a small number of free explanations tracked by cookie
// @Tags explain
// @Accept json
// @Produce json
// @Param request body Request true "Passage to explain"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} DenialResponse
// @Failure 403 {object} AnonymousLimitResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/explain [post]
func Handler(service *explain.Service, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		input := explain.Input{
			Passage:   req.Passage,
			Context:   req.Context,
			BookTitle: req.BookTitle,
			Provider:  llm.Provider(req.Provider),
			LlmAPIKey: req.LlmAPIKey,
		}

		userID, authenticated := auth.GetUserID(c)

		if !authenticated {
			handleAnonymous(c, service, input, secureCookies)
			return
		}

		result, err := service.ExplainForUser(c.Request.Context(), userID, input)

		if stderrors.Is(err, explain.ErrPaymentRequired) {
			c.JSON(http.StatusPaymentRequired, DenialResponse{
				Error:                  errors.CodeInsufficientCredits,
				Message:                "not enough credits for an explanation",
				CreditsRemaining:       result.CreditsRemaining,
				MinutesUntilNextCredit: result.MinutesUntilNextCredit,
			})
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to generate explanation", err)
			return
		}

		c.JSON(http.StatusOK, Response{
			Explanation:      result.Explanation,
			Model:            result.Model,
			Cached:           result.Cached,
			CreditsUsed:      result.CreditsUsed,
			CreditsRemaining: result.CreditsRemaining,
			HourlyGranted:    result.HourlyGranted,
		})
	}
}

// the anonymous path: a client-held cookie counts free explanations.
// this is a soft limit for drive-by readers, not a security boundary;
// clearing cookies resets it
func handleAnonymous(c *gin.Context, service *explain.Service, input explain.Input, secureCookies bool) {
	if !anonusage.Allowed(c) {
		c.JSON(http.StatusForbidden, AnonymousLimitResponse{
			Error:   errors.CodeAnonymousLimit,
			Message: "free explanations used up; sign in to continue",
		})
		return
	}

	result, err := service.ExplainAnonymous(c.Request.Context(), input)
	if err != nil {
		errors.InternalError(c, "failed to generate explanation", err)
		return
	}

	// cache hits don't count against the free allowance
	remaining := anonusage.Remaining(c)
	if !result.Cached {
		used := anonusage.Increment(c, secureCookies)
		remaining = anonusage.FreeLimit - used
		if remaining < 0 {
			remaining = 0
		}
	}

	c.JSON(http.StatusOK, Response{
		Explanation:        result.Explanation,
		Model:              result.Model,
		Cached:             result.Cached,
		AnonymousRemaining: &remaining,
	})
}
