package library

import "codeberg.org/explainer/server/internal/library"

// BooksResponse lists the catalog
type BooksResponse struct {
	Books []library.Book `json:"books"`
}

// BookResponse wraps a single catalog entry
type BookResponse struct {
	Book *library.Book `json:"book"`
}

// ContentResponse carries the full plain text of a book
type ContentResponse struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
