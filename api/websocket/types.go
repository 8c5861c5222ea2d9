package websocket

// ConnectParams are the query parameters for the streaming endpoint.
// streaming requires a signed-in user; anonymous readers use the REST
// endpoint
type ConnectParams struct {
	Token string `form:"token" binding:"required"` // jwt token
}

// ExplainRequest is the single JSON message the client sends after
// connecting
type ExplainRequest struct {
	Passage   string `json:"passage"`
	Context   string `json:"context"`
	BookTitle string `json:"book_title"`
	Provider  string `json:"provider"`
	LlmAPIKey string `json:"llm_api_key"`
}

// stream message types
const (
	MessageDelta = "delta"
	MessageDone  = "done"
	MessageError = "error"
)

// StreamMessage is every frame the server sends. Delta frames carry
// text; the done frame carries the final credit state; error frames end
// the stream
type StreamMessage struct {
	Type string `json:"type"`

	// delta frames
	Text string `json:"text,omitempty"`

	// done frames
	Model                  string  `json:"model,omitempty"`
	Cached                 bool    `json:"cached,omitempty"`
	CreditsUsed            float64 `json:"credits_used,omitempty"`
	CreditsRemaining       float64 `json:"credits_remaining,omitempty"`
	HourlyGranted          bool    `json:"hourly_granted,omitempty"`
	MinutesUntilNextCredit int     `json:"minutes_until_next_credit,omitempty"`

	// error frames
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
