package purchases

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store using PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL purchase event store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the purchase_events table if it doesn't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	_, err := s.db.Exec(ctx, createPurchaseEventsTableSQL)
	return err
}

// returns ErrDuplicateEvent when the event was already settled
func (s *PostgresStore) MarkProcessed(ctx context.Context, eventID string) error {
	tag, err := s.db.Exec(ctx, queryMarkProcessed, eventID)
	if err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDuplicateEvent
	}

	return nil
}

// releases an event so a webhook retry can settle it
func (s *PostgresStore) Unmark(ctx context.Context, eventID string) error {
	if _, err := s.db.Exec(ctx, queryUnmarkEvent, eventID); err != nil {
		return fmt.Errorf("failed to release payment event: %w", err)
	}

	return nil
}
