package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Ledger owns a user's credit balance and hourly-grant eligibility. all
// mutations go through the Store's atomic operations; no other code path
// writes credits or last_hourly_credit
type Ledger struct {
	store Store
	now   func() time.Time
}

// point-in-time view of a user's balance
type Balance struct {
	Credits          float64    `json:"credits"`
	LastHourlyCredit *time.Time `json:"last_hourly_credit"`
	SubscriptionTier string     `json:"subscription_tier"`
}

// creates a ledger over the given store
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// replaces the ledger's clock (tests only)
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// provisions a user row for a verified email, returning the existing row if
// one is already there
func (l *Ledger) Provision(ctx context.Context, email string) (*User, error) {
	return l.store.FindOrCreateByEmail(ctx, email)
}

// loads the full user row. returns ErrNotFound for unknown users
func (l *Ledger) GetUser(ctx context.Context, userID string) (*User, error) {
	return l.store.GetByID(ctx, userID)
}

// read-only balance snapshot. returns ErrNotFound for unknown users
func (l *Ledger) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	user, err := l.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Credits:          user.Credits,
		LastHourlyCredit: user.LastHourlyCredit,
		SubscriptionTier: user.SubscriptionTier,
	}, nil
}

// decision query: is the hourly grant currently available? safe to call
// repeatedly, never mutates. false for unknown users
func (l *Ledger) CanGrantHourly(ctx context.Context, userID string) (bool, error) {
	user, err := l.store.GetByID(ctx, userID)

	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if user.LastHourlyCredit == nil {
		return true, nil
	}

	return l.now().UTC().Sub(user.LastHourlyCredit.UTC()) >= HourlyGrantInterval, nil
}

// issues the hourly credit. the store enforces at most one grant per rolling
// hour even under concurrent callers; ErrNotEligible means another request
// got there first or the cooldown hasn't elapsed
func (l *Ledger) GrantHourly(ctx context.Context, userID string) (*User, error) {
	return l.store.GrantHourly(ctx, userID, HourlyGrantAmount)
}

// debits the balance for a completed explanation. amount policy (1.0
// standard, 0.2 BYOLLM) is the caller's concern
func (l *Ledger) Debit(ctx context.Context, userID string, amount float64, meta UsageMetadata) (*User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %v", amount)
	}

	return l.store.Debit(ctx, userID, amount, meta)
}

// credits the balance for a purchased pack
func (l *Ledger) Credit(ctx context.Context, userID string, amount float64, description string) (*User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %v", amount)
	}

	return l.store.Credit(ctx, userID, amount, description)
}

// time remaining until the next hourly grant. zero for users who never
// received one (immediately eligible) and for unknown users
func (l *Ledger) TimeUntilNextHourly(ctx context.Context, userID string) (time.Duration, error) {
	user, err := l.store.GetByID(ctx, userID)

	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	if user.LastHourlyCredit == nil {
		return 0, nil
	}

	remaining := user.LastHourlyCredit.UTC().Add(HourlyGrantInterval).Sub(l.now().UTC())
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

// most recent ledger entries for a user, newest first
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return l.store.Transactions(ctx, userID, limit)
}
