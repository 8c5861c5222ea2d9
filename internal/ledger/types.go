package ledger

import (
	"context"
	"errors"
	"time"
)

// transaction types recorded in the append-only ledger
const (
	TxHourlyGrant = "hourly_grant"
	TxUsage       = "usage"
	TxPurchase    = "purchase"
)

const (
	// credits issued by a single hourly grant
	HourlyGrantAmount = 1.0

	// minimum spacing between two hourly grants for the same user
	HourlyGrantInterval = time.Hour
)

var (
	// no user row matches the given key
	ErrNotFound = errors.New("user not found")

	// hourly grant requested before the cooldown elapsed; not a failure,
	// just "not yet"
	ErrNotEligible = errors.New("hourly credit not yet available")

	// debit amount exceeds the current balance
	ErrInsufficientBalance = errors.New("insufficient credit balance")
)

// represents a reader account holding a credit balance.
// provisioned lazily on first sign-in, never deleted.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Credits          float64    `json:"credits"`
	LastHourlyCredit *time.Time `json:"last_hourly_credit"`
	SubscriptionTier string     `json:"subscription_tier"`
	CreatedAt        time.Time  `json:"created_at"`
}

// a single append-only ledger entry. amounts are positive for grants and
// purchases, negative for usage
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"transaction_type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// audit detail attached to a usage debit
type UsageMetadata struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	IsByollm  bool   `json:"is_byollm"`
	BookTitle string `json:"book_title"`
}

// Store persists users and their credit ledger.
//
// Every balance mutation is paired with exactly one transaction insert in the
// same atomic unit, so the sum of a user's transaction amounts always equals
// their current balance. GrantHourly folds the eligibility check into the
// write itself: two concurrent calls for the same user can never both
// succeed within one rolling hour.
type Store interface {
	// provisions the user on first sign-in, no-op on subsequent ones
	FindOrCreateByEmail(ctx context.Context, email string) (*User, error)

	// returns ErrNotFound when no user row matches
	GetByID(ctx context.Context, userID string) (*User, error)

	// +amount credits and a hourly_grant entry iff the cooldown elapsed;
	// returns ErrNotEligible otherwise, with no partial mutation
	GrantHourly(ctx context.Context, userID string, amount float64) (*User, error)

	// -amount credits, a usage entry and a usage record, all or nothing;
	// returns ErrInsufficientBalance when the balance would go negative
	Debit(ctx context.Context, userID string, amount float64, meta UsageMetadata) (*User, error)

	// +amount credits and a purchase entry
	Credit(ctx context.Context, userID string, amount float64, description string) (*User, error)

	// most recent ledger entries, newest first
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
}
