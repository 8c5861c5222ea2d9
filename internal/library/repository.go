package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store using PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL catalog store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the books table if it doesn't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	_, err := s.db.Exec(ctx, createBooksTableSQL)
	return err
}

func (s *PostgresStore) List(ctx context.Context) ([]Book, error) {
	rows, err := s.db.Query(ctx, queryListBooks)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	defer rows.Close()
	var books []Book

	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}

		books = append(books, *book)
	}

	return books, rows.Err()
}

// returns ErrNotFound when no book matches the slug
func (s *PostgresStore) GetBySlug(ctx context.Context, slug string) (*Book, error) {
	book, err := scanBook(s.db.QueryRow(ctx, queryGetBookBySlug, slug))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	return book, nil
}

// returns ErrSlugTaken when the slug is already in the catalog
func (s *PostgresStore) Insert(ctx context.Context, book *Book) (*Book, error) {
	inserted, err := scanBook(s.db.QueryRow(ctx, queryInsertBook,
		book.Slug, book.Title, book.Author, book.Format, book.FilePath, book.WordCount))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrSlugTaken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to insert book: %w", err)
	}

	return inserted, nil
}

func (s *PostgresStore) Delete(ctx context.Context, slug string) error {
	tag, err := s.db.Exec(ctx, queryDeleteBook, slug)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanBook(row pgx.Row) (*Book, error) {
	var book Book

	err := row.Scan(
		&book.ID,
		&book.Slug,
		&book.Title,
		&book.Author,
		&book.Format,
		&book.FilePath,
		&book.WordCount,
		&book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	book.CreatedAt = book.CreatedAt.UTC()

	return &book, nil
}
