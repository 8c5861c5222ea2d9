package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// implements Store using in-memory storage. semantics mirror the conditional
// writes of PostgresStore so ledger invariants can be exercised without a
// database
type MemoryStore struct {
	mu           sync.Mutex
	users        map[string]*User
	byEmail      map[string]string
	transactions map[string][]Transaction
	usage        map[string][]UsageMetadata
	nextID       int64
	nextTxID     int64

	// clock used for grant eligibility; replaceable in tests
	now func() time.Time

	// optional fault injection for the usage-record insert step, used to
	// verify debit atomicity
	UsageInsertHook func() error
}

// creates a new in-memory ledger store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*User),
		byEmail:      make(map[string]string),
		transactions: make(map[string][]Transaction),
		usage:        make(map[string][]UsageMetadata),
		now:          time.Now,
	}
}

// replaces the store's clock
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// provisions the user on first sign-in, no-op on subsequent ones
func (s *MemoryStore) FindOrCreateByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.byEmail[email]; exists {
		return copyUser(s.users[id]), nil
	}

	s.nextID++
	user := &User{
		ID:               fmt.Sprintf("user-%d", s.nextID),
		Email:            email,
		Credits:          0,
		SubscriptionTier: "free",
		CreatedAt:        s.now().UTC(),
	}

	s.users[user.ID] = user
	s.byEmail[email] = user.ID

	return copyUser(user), nil
}

// returns ErrNotFound when no user row matches
func (s *MemoryStore) GetByID(_ context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, ErrNotFound
	}

	return copyUser(user), nil
}

// issues the hourly credit iff the cooldown elapsed. check and mutation
// happen under one lock, matching the single conditional UPDATE in Postgres
func (s *MemoryStore) GrantHourly(_ context.Context, userID string, amount float64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, ErrNotFound
	}

	now := s.now().UTC()

	if user.LastHourlyCredit != nil && now.Sub(*user.LastHourlyCredit) < HourlyGrantInterval {
		return nil, ErrNotEligible
	}

	user.Credits += amount
	user.LastHourlyCredit = &now
	s.appendTransaction(userID, TxHourlyGrant, amount, "Hourly free credit", now)

	return copyUser(user), nil
}

// debits the balance and records both the ledger entry and the usage detail,
// all or nothing
func (s *MemoryStore) Debit(_ context.Context, userID string, amount float64, meta UsageMetadata) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, ErrNotFound
	}

	if user.Credits < amount {
		return nil, ErrInsufficientBalance
	}

	// simulated usage-record failure must leave balance and ledger untouched
	if s.UsageInsertHook != nil {
		if err := s.UsageInsertHook(); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	user.Credits -= amount
	s.appendTransaction(userID, TxUsage, -amount, "Explanation request", now)
	s.usage[userID] = append(s.usage[userID], meta)

	return copyUser(user), nil
}

// credits the balance (purchases). no upper bound
func (s *MemoryStore) Credit(_ context.Context, userID string, amount float64, description string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, ErrNotFound
	}

	user.Credits += amount
	s.appendTransaction(userID, TxPurchase, amount, description, s.now().UTC())

	return copyUser(user), nil
}

// most recent ledger entries, newest first
func (s *MemoryStore) Transactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.transactions[userID]
	result := make([]Transaction, 0, limit)

	for i := len(all) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, all[i])
	}

	return result, nil
}

// usage records for a user, oldest first
func (s *MemoryStore) UsageRecords(userID string) []UsageMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]UsageMetadata(nil), s.usage[userID]...)
}

func (s *MemoryStore) appendTransaction(userID, txType string, amount float64, description string, at time.Time) {
	s.nextTxID++
	s.transactions[userID] = append(s.transactions[userID], Transaction{
		ID:          s.nextTxID,
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   at,
	})
}

func copyUser(u *User) *User {
	clone := *u

	if u.LastHourlyCredit != nil {
		t := *u.LastHourlyCredit
		clone.LastHourlyCredit = &t
	}

	return &clone
}
