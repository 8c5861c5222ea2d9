package purchases

import (
	"context"
	"errors"
)

var (
	ErrUnknownPack        = errors.New("unknown credit pack")
	ErrDuplicateEvent     = errors.New("payment event already processed")
	ErrSimulationDisabled = errors.New("simulated purchases are disabled in production")
)

// Pack is a purchasable bundle of credits
type Pack struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Credits    float64 `json:"credits"`
	PriceCents int64   `json:"price_cents"`
}

// the catalog is fixed; prices are in USD cents
var packs = []Pack{
	{ID: "starter", Name: "Starter Pack", Credits: 20, PriceCents: 199},
	{ID: "standard", Name: "Standard Pack", Credits: 100, PriceCents: 499},
	{ID: "bulk", Name: "Bulk Pack", Credits: 500, PriceCents: 1999},
}

// Store records which payment events have been settled. Stripe retries
// webhook delivery, so every event must credit the ledger at most once.
// Unmark releases an event whose credit step failed so a retry can
// settle it
type Store interface {
	MarkProcessed(ctx context.Context, eventID string) error
	Unmark(ctx context.Context, eventID string) error
}
