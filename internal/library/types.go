package library

import (
	"context"
	"errors"
	"time"
)

// book formats the library can serve
const (
	FormatText = "text"
	FormatPDF  = "pdf"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrSlugTaken     = errors.New("a book with this slug already exists")
	ErrBadFormat     = errors.New("unsupported book format")
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// Book is a catalog entry. the content itself lives on disk under the
// library root, keyed by FilePath
type Book struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Format    string    `json:"format"`
	FilePath  string    `json:"-"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the catalog persistence boundary
type Store interface {
	List(ctx context.Context) ([]Book, error)
	GetBySlug(ctx context.Context, slug string) (*Book, error)
	Insert(ctx context.Context, book *Book) (*Book, error)
	Delete(ctx context.Context, slug string) error
}
