package paywall

import (
	"context"
	"errors"
	"fmt"
	"math"

	"codeberg.org/explainer/server/internal/ledger"
)

// Gate composes the ledger's operations into the paywall decision gating
// explanation requests. the hourly grant is always issued before the balance
// check, so free credits are used up before purchased ones are touched
type Gate struct {
	ledger *ledger.Ledger
}

// creates a paywall gate over the given ledger
func New(l *ledger.Ledger) *Gate {
	return &Gate{ledger: l}
}

// decides whether a request costing creditsNeeded may proceed.
//
// grant-before-check: if the hourly grant is available it is claimed first,
// even when it alone cannot cover the cost. a denial carries the current
// balance and the wait until the next free credit so the caller can render a
// wait/purchase prompt. the caller debits only after the protected action
// succeeds, never here
func (g *Gate) Decide(ctx context.Context, userID string, creditsNeeded float64) (*Decision, error) {
	if creditsNeeded <= 0 {
		return nil, fmt.Errorf("creditsNeeded must be positive, got %v", creditsNeeded)
	}

	decision := &Decision{CreditsNeeded: creditsNeeded}

	eligible, err := g.ledger.CanGrantHourly(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check hourly eligibility: %w", err)
	}

	if eligible {
		_, err := g.ledger.GrantHourly(ctx, userID)

		switch {
		case err == nil:
			decision.HourlyGranted = true
		case errors.Is(err, ledger.ErrNotEligible):
			// lost the race to a concurrent request; that grant still
			// counts toward the balance we read next
		default:
			return nil, fmt.Errorf("failed to grant hourly credit: %w", err)
		}
	}

	// re-read: the balance may include the grant just issued
	balance, err := g.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision.CurrentCredits = balance.Credits

	if balance.Credits >= creditsNeeded {
		decision.Allowed = true
		return decision, nil
	}

	wait, err := g.ledger.TimeUntilNextHourly(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute wait time: %w", err)
	}

	decision.MinutesUntilNextCredit = int(math.Ceil(wait.Minutes()))

	return decision, nil
}
