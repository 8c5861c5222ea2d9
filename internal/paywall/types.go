package paywall

// outcome of a paywall check for a single explanation request
type Decision struct {
	Allowed bool `json:"allowed"`

	// credits the request would consume
	CreditsNeeded float64 `json:"credits_needed"`

	// balance after any hourly grant issued during the check
	CurrentCredits float64 `json:"current_credits"`

	// whether this check issued the hourly grant
	HourlyGranted bool `json:"hourly_granted"`

	// minutes until the next free credit, 0 when Allowed
	MinutesUntilNextCredit int `json:"minutes_until_next_credit"`
}
