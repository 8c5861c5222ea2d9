package library

const createBooksTableSQL = `
CREATE TABLE IF NOT EXISTS books (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	slug TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL CHECK (format IN ('text', 'pdf')),
	file_path TEXT NOT NULL,
	word_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_books_slug ON books(slug);
`

const (
	queryListBooks = `
		SELECT id, slug, title, author, format, file_path, word_count, created_at
		FROM books
		ORDER BY title ASC`

	queryGetBookBySlug = `
		SELECT id, slug, title, author, format, file_path, word_count, created_at
		FROM books
		WHERE slug = $1`

	queryInsertBook = `
		INSERT INTO books (slug, title, author, format, file_path, word_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, slug, title, author, format, file_path, word_count, created_at`

	queryDeleteBook = `
		DELETE FROM books
		WHERE slug = $1`
)
