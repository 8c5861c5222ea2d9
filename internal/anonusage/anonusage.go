// Package anonusage caps unauthenticated explanation requests with a
// client-held cookie counter. The counter is trivially resettable by the
// client and is deliberately not a security boundary; it only exists to
// nudge anonymous readers toward signing in.
package anonusage

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// free explanations before an anonymous reader must sign in
	FreeLimit = 3

	CookieName = "explainer_anon_usage"

	// 30 days
	cookieMaxAge = 30 * 24 * 60 * 60
)

// reads the anonymous usage count from the request cookie. malformed or
// missing cookies read as zero
func Count(c *gin.Context) int {
	raw, err := c.Cookie(CookieName)
	if err != nil {
		return 0
	}

	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0
	}

	return count
}

// whether the anonymous reader has free uses remaining
func Allowed(c *gin.Context) bool {
	return Count(c) < FreeLimit
}

// remaining free uses for the anonymous reader
func Remaining(c *gin.Context) int {
	remaining := FreeLimit - Count(c)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// writes the incremented counter back to the client after a served request
func Increment(c *gin.Context, secure bool) int {
	count := Count(c) + 1

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, strconv.Itoa(count), cookieMaxAge, "/", "", secure, true)

	return count
}
