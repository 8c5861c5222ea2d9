package explain

// Request is the body for an explanation request. passage is the text
// the reader selected; context is the surrounding text their client
// sent along for grounding
type Request struct {
	Passage   string `json:"passage" binding:"required"`
	Context   string `json:"context"`
	BookTitle string `json:"book_title"`
	Provider  string `json:"provider"`
	LlmAPIKey string `json:"llm_api_key"`
}

// Response carries the explanation and the caller's credit state after
// the request
type Response struct {
	Explanation      string  `json:"explanation"`
	Model            string  `json:"model"`
	Cached           bool    `json:"cached"`
	CreditsUsed      float64 `json:"credits_used"`
	CreditsRemaining float64 `json:"credits_remaining"`
	HourlyGranted    bool    `json:"hourly_granted"`

	// anonymous callers only
	AnonymousRemaining *int `json:"anonymous_remaining,omitempty"`
}

// DenialResponse is the 402 body when the paywall blocks the request
type DenialResponse struct {
	Error                  string  `json:"error"`
	Message                string  `json:"message"`
	CreditsRemaining       float64 `json:"credits_remaining"`
	MinutesUntilNextCredit int     `json:"minutes_until_next_credit"`
}

// AnonymousLimitResponse is the 403 body when the free anonymous
// explanations are used up
type AnonymousLimitResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
