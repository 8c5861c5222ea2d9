package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/explainer/server/internal/anonusage"
	"codeberg.org/explainer/server/internal/explain"
	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/llm"
	"codeberg.org/explainer/server/internal/paywall"
)

type stubGenerator struct {
	text string
}

func (s *stubGenerator) Model() string { return "claude-3-5-haiku-20241022" }

func (s *stubGenerator) Generate(_ context.Context, _ llm.Request) (*llm.Response, error) {
	return &llm.Response{Text: s.text, Model: s.Model()}, nil
}

func (s *stubGenerator) GenerateStream(_ context.Context, _ llm.Request, emit func(string) error) (*llm.Response, error) {
	if err := emit(s.text); err != nil {
		return nil, err
	}
	return &llm.Response{Text: s.text, Model: s.Model()}, nil
}

type stubSource struct {
	gen *stubGenerator
}

func (s *stubSource) Generator(_ llm.Provider, _ string) (llm.Generator, error) {
	return s.gen, nil
}

func (s *stubSource) StreamingGenerator(_ llm.Provider, _ string) (llm.StreamingGenerator, error) {
	return s.gen, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *ledger.User) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := ledger.NewMemoryStore()
	l := ledger.New(store)

	user, err := store.FindOrCreateByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)

	service := explain.New(&stubSource{gen: &stubGenerator{text: "An explanation."}}, paywall.New(l), l, nil)

	router := gin.New()

	// stand-in for the auth middleware: a header carries the identity
	router.POST("/explain", func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", id)
		}
		c.Next()
	}, Handler(service, false))

	return router, user
}

func doExplain(router *gin.Engine, userID string, cookie string) *httptest.ResponseRecorder {
	body := `{"passage": "Call me Ishmael."}`
	req := httptest.NewRequest(http.MethodPost, "/explain", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}

	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: anonusage.CookieName, Value: cookie})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_AuthenticatedSpendsGrant(t *testing.T) {
	router, user := newTestRouter(t)

	w := doExplain(router, user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "An explanation.", resp.Explanation)
	assert.True(t, resp.HourlyGranted)
	assert.InDelta(t, 1.0, resp.CreditsUsed, 1e-9)
	assert.Nil(t, resp.AnonymousRemaining)
}

func TestHandler_AuthenticatedDeniedReturns402(t *testing.T) {
	router, user := newTestRouter(t)

	// first request consumes the hourly grant
	require.Equal(t, http.StatusOK, doExplain(router, user.ID, "").Code)

	w := doExplain(router, user.ID, "")
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var denial DenialResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &denial))

	assert.Equal(t, "insufficient_credits", denial.Error)
	assert.Equal(t, 60, denial.MinutesUntilNextCredit)
}

func TestHandler_AnonymousCountsDown(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doExplain(router, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.NotNil(t, resp.AnonymousRemaining)
	assert.Equal(t, anonusage.FreeLimit-1, *resp.AnonymousRemaining)

	// the response must set the incremented counter cookie
	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == anonusage.CookieName {
			found = true
			assert.Equal(t, "1", cookie.Value)
		}
	}
	assert.True(t, found, "expected the usage cookie to be set")
}

func TestHandler_AnonymousLimitReached(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doExplain(router, "", fmt.Sprintf("%d", anonusage.FreeLimit))
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp AnonymousLimitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "anonymous_limit_reached", resp.Error)
}

func TestHandler_RejectsEmptyPassage(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/explain", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
