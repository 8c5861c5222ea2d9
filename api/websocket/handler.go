package websocket

import (
	stderrors "errors"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/explainer/server/internal/auth"
	"codeberg.org/explainer/server/internal/errors"
	"codeberg.org/explainer/server/internal/explain"
	"codeberg.org/explainer/server/internal/llm"
	"codeberg.org/explainer/server/internal/logger"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// handles WebSocket connections for streamed explanations. the client
// sends one ExplainRequest after connecting and receives delta frames
// as the model produces text, ending with a done or error frame
func ExplainStreamHandler(service *explain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		claims, err := auth.ValidateJWT(params.Token)
		if err != nil {
			errors.Unauthorized(c, "invalid token")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection", "user_id", claims.UserID)
			return
		}

		defer conn.Close() //nolint:errcheck

		conn.SetReadDeadline(time.Now().Add(readTimeout)) //nolint:errcheck,gosec

		var req ExplainRequest
		if err := conn.ReadJSON(&req); err != nil {
			writeError(conn, errors.CodeBadRequest, "failed to read explanation request")
			return
		}

		input := explain.Input{
			Passage:   req.Passage,
			Context:   req.Context,
			BookTitle: req.BookTitle,
			Provider:  llm.Provider(req.Provider),
			LlmAPIKey: req.LlmAPIKey,
		}

		result, err := service.ExplainStreamForUser(c.Request.Context(), claims.UserID, input,
			func(delta string) error {
				return writeFrame(conn, StreamMessage{Type: MessageDelta, Text: delta})
			})

		if stderrors.Is(err, explain.ErrPaymentRequired) {
			writeFrame(conn, StreamMessage{ //nolint:errcheck,gosec
				Type:                   MessageError,
				Error:                  errors.CodeInsufficientCredits,
				Message:                "not enough credits for an explanation",
				CreditsRemaining:       result.CreditsRemaining,
				MinutesUntilNextCredit: result.MinutesUntilNextCredit,
			})
			return
		}

		if err != nil {
			logger.ErrorErr(err, "streamed explanation failed", "user_id", claims.UserID)
			writeError(conn, errors.CodeServerError, "failed to generate explanation")
			return
		}

		writeFrame(conn, StreamMessage{ //nolint:errcheck,gosec
			Type:             MessageDone,
			Model:            result.Model,
			Cached:           result.Cached,
			CreditsUsed:      result.CreditsUsed,
			CreditsRemaining: result.CreditsRemaining,
			HourlyGranted:    result.HourlyGranted,
		})
	}
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck,gosec
	return conn.WriteJSON(msg)
}

func writeError(conn *websocket.Conn, code, message string) {
	writeFrame(conn, StreamMessage{ //nolint:errcheck,gosec
		Type:    MessageError,
		Error:   code,
		Message: message,
	})
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	env := os.Getenv("ENVIRONMENT")

	if env != "production" {
		return true
	}

	if origin == "" {
		logger.Warn("websocket connection with no origin header")
		return false
	}

	allowed := allowedOrigins()
	if len(allowed) == 0 {
		logger.Warn("websocket origin rejected - ALLOWED_ORIGINS not configured", "origin", origin)
		return false
	}

	return slices.Contains(allowed, origin)
}

func allowedOrigins() []string {
	envOrigins := os.Getenv("ALLOWED_ORIGINS")
	if envOrigins == "" {
		return []string{}
	}

	origins := strings.Split(envOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return origins
}
