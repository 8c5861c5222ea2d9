package auth

import "codeberg.org/explainer/server/internal/ledger"

// AuthResponse is returned after successful OAuth callback
type AuthResponse struct {
	User  *ledger.User `json:"user"`
	Token string       `json:"token"`
}

// UserResponse wraps the user profile with current credit state
type UserResponse struct {
	User             *ledger.User `json:"user"`
	HourlyEligible   bool         `json:"hourly_eligible"`
	MinutesUntilNext int          `json:"minutes_until_next_credit"`
}

// MessageResponse is a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
