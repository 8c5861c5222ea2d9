package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store using PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL ledger store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the required tables if they don't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	_, err := s.db.Exec(ctx, createTablesSQL)
	return err
}

// provisions the user on first sign-in, no-op on subsequent ones
func (s *PostgresStore) FindOrCreateByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, queryFindOrCreateByEmail, email))
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	return user, nil
}

// returns ErrNotFound when no user row matches
func (s *PostgresStore) GetByID(ctx context.Context, userID string) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, queryGetByID, userID))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// issues the hourly credit iff the cooldown elapsed. the eligibility check
// and the balance increment are a single conditional UPDATE, so at most one
// of any number of concurrent callers can succeed per rolling hour
func (s *PostgresStore) GrantHourly(ctx context.Context, userID string, amount float64) (*User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	user, err := scanUser(tx.QueryRow(ctx, queryGrantHourly, userID, amount))

	if errors.Is(err, pgx.ErrNoRows) {
		// either the user doesn't exist or another request already granted
		return nil, s.notEligibleOrNotFound(ctx, userID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to grant hourly credit: %w", err)
	}

	_, err = tx.Exec(ctx, queryInsertTransaction, userID, TxHourlyGrant, amount, "Hourly free credit")
	if err != nil {
		return nil, fmt.Errorf("failed to record grant transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit grant: %w", err)
	}

	return user, nil
}

// debits the balance and records both the ledger entry and the usage detail.
// all three effects commit together or not at all
func (s *PostgresStore) Debit(ctx context.Context, userID string, amount float64, meta UsageMetadata) (*User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	user, err := scanUser(tx.QueryRow(ctx, queryDebit, userID, amount))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.insufficientOrNotFound(ctx, userID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}

	_, err = tx.Exec(ctx, queryInsertTransaction, userID, TxUsage, -amount, "Explanation request")
	if err != nil {
		return nil, fmt.Errorf("failed to record usage transaction: %w", err)
	}

	_, err = tx.Exec(ctx, queryInsertUsageRecord,
		userID, amount, meta.Provider, meta.Model, meta.IsByollm, meta.BookTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to record usage detail: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit debit: %w", err)
	}

	return user, nil
}

// credits the balance (purchases). no upper bound
func (s *PostgresStore) Credit(ctx context.Context, userID string, amount float64, description string) (*User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	user, err := scanUser(tx.QueryRow(ctx, queryCredit, userID, amount))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	_, err = tx.Exec(ctx, queryInsertTransaction, userID, TxPurchase, amount, description)
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit credit: %w", err)
	}

	return user, nil
}

// most recent ledger entries, newest first
func (s *PostgresStore) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, queryTransactions, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	defer rows.Close()
	transactions := []Transaction{}

	for rows.Next() {
		var t Transaction

		err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

// distinguishes "already granted this hour" from "no such user" after a
// conditional grant matched zero rows
func (s *PostgresStore) notEligibleOrNotFound(ctx context.Context, userID string) error {
	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return err
	}

	if !exists {
		return ErrNotFound
	}

	return ErrNotEligible
}

// distinguishes "balance too low" from "no such user" after a conditional
// debit matched zero rows
func (s *PostgresStore) insufficientOrNotFound(ctx context.Context, userID string) error {
	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return err
	}

	if !exists {
		return ErrNotFound
	}

	return ErrInsufficientBalance
}

func (s *PostgresStore) userExists(ctx context.Context, userID string) (bool, error) {
	var exists bool

	err := s.db.QueryRow(ctx, queryUserExists, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Credits,
		&user.LastHourlyCredit,
		&user.SubscriptionTier,
		&user.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	// timestamps are compared in UTC everywhere in this package
	if user.LastHourlyCredit != nil {
		utc := user.LastHourlyCredit.UTC()
		user.LastHourlyCredit = &utc
	}
	user.CreatedAt = user.CreatedAt.UTC()

	return &user, nil
}
