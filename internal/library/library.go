package library

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"codeberg.org/explainer/server/internal/logger"
)

// uploads above this size are rejected before touching disk
const maxUploadBytes = 25 << 20 // 25 MB

// Service serves the book catalog and the text behind it. catalog rows
// live in the store; the documents themselves live on disk under root
type Service struct {
	store Store
	root  string
}

// creates the library service over the given catalog store and content
// directory. the directory is created if missing
func New(store Store, root string) (*Service, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	return &Service{store: store, root: root}, nil
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, slug string) (*Book, error) {
	return s.store.GetBySlug(ctx, slug)
}

// Content returns the full plain text of a book, extracting from PDF
// when needed
func (s *Service) Content(ctx context.Context, slug string) (string, error) {
	book, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	path, err := s.resolve(book.FilePath)
	if err != nil {
		return "", err
	}

	switch book.Format {
	case FormatText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read book content: %w", err)
		}

		return string(data), nil

	case FormatPDF:
		text, err := extractPDFText(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf text: %w", err)
		}

		return text, nil

	default:
		return "", ErrBadFormat
	}
}

// Upload adds a document to the library: the file lands under the
// library root and the catalog gains a row keyed by a slug derived from
// the title
func (s *Service) Upload(ctx context.Context, title, author, filename string, data []byte) (*Book, error) {
	if title == "" {
		return nil, fmt.Errorf("title cannot be empty")
	}

	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("document exceeds the %d byte upload limit", maxUploadBytes)
	}

	format, ext, err := formatForFilename(filename)
	if err != nil {
		return nil, err
	}

	slug := Slugify(title)
	if slug == "" {
		return nil, fmt.Errorf("title produces an empty slug")
	}

	relPath := slug + ext

	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write book content: %w", err)
	}

	words, err := s.countWords(path, format)
	if err != nil {
		s.removeFile(path)
		return nil, err
	}

	book, err := s.store.Insert(ctx, &Book{
		Slug:      slug,
		Title:     title,
		Author:    author,
		Format:    format,
		FilePath:  relPath,
		WordCount: words,
	})
	if err != nil {
		s.removeFile(path)
		return nil, err
	}

	return book, nil
}

// Delete removes a book from the catalog and its document from disk
func (s *Service) Delete(ctx context.Context, slug string) error {
	book, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, slug); err != nil {
		return err
	}

	if path, err := s.resolve(book.FilePath); err == nil {
		s.removeFile(path)
	}

	return nil
}

// joins a stored relative path against the library root and rejects
// anything that escapes it
func (s *Service) resolve(relPath string) (string, error) {
	path := filepath.Join(s.root, filepath.Clean("/"+relPath))

	if !strings.HasPrefix(path, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid book path: %s", relPath)
	}

	return path, nil
}

func (s *Service) countWords(path, format string) (int, error) {
	var text string

	switch format {
	case FormatText:
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read book content: %w", err)
		}

		text = string(data)

	case FormatPDF:
		extracted, err := extractPDFText(path)
		if err != nil {
			return 0, fmt.Errorf("failed to extract pdf text: %w", err)
		}

		text = extracted
	}

	words := len(strings.Fields(text))
	if words == 0 {
		return 0, ErrEmptyDocument
	}

	return words, nil
}

func (s *Service) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove book file", "path", path, "error", err)
	}
}

func formatForFilename(filename string) (format, ext string, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return FormatText, ".txt", nil
	case ".pdf":
		return FormatPDF, ".pdf", nil
	default:
		return "", "", ErrBadFormat
	}
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}

	defer f.Close() //nolint:errcheck

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}

	return buf.String(), nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a url-safe catalog key
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalid.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
