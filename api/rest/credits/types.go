package credits

import (
	"time"

	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/purchases"
)

// BalanceResponse is the current credit state for a user
type BalanceResponse struct {
	Credits          float64    `json:"credits"`
	SubscriptionTier string     `json:"subscription_tier"`
	LastHourlyCredit *time.Time `json:"last_hourly_credit"`
	HourlyEligible   bool       `json:"hourly_eligible"`
	MinutesUntilNext int        `json:"minutes_until_next_credit"`
}

// ClaimResponse is returned after claiming the hourly credit
type ClaimResponse struct {
	Credits          float64 `json:"credits"`
	Granted          bool    `json:"granted"`
	MinutesUntilNext int     `json:"minutes_until_next_credit"`
}

// HistoryResponse lists recent ledger entries, newest first
type HistoryResponse struct {
	Transactions []ledger.Transaction `json:"transactions"`
}

// PacksResponse lists the purchasable credit packs
type PacksResponse struct {
	Packs []purchases.Pack `json:"packs"`
}

// PurchaseRequest names the pack to buy
type PurchaseRequest struct {
	PackID string `json:"pack_id" binding:"required"`
}

// PurchaseResponse is returned after a simulated purchase settles
type PurchaseResponse struct {
	Credits float64 `json:"credits"`
	Pack    string  `json:"pack"`
}
