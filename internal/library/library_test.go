package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// memStore is an in-process catalog for tests
type memStore struct {
	books map[string]Book
	next  int
}

func newMemStore() *memStore {
	return &memStore{books: make(map[string]Book)}
}

func (m *memStore) List(_ context.Context) ([]Book, error) {
	var books []Book
	for _, b := range m.books {
		books = append(books, b)
	}
	return books, nil
}

func (m *memStore) GetBySlug(_ context.Context, slug string) (*Book, error) {
	book, ok := m.books[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return &book, nil
}

func (m *memStore) Insert(_ context.Context, book *Book) (*Book, error) {
	if _, ok := m.books[book.Slug]; ok {
		return nil, ErrSlugTaken
	}

	m.next++
	stored := *book
	stored.ID = fmt.Sprintf("book-%d", m.next)
	stored.CreatedAt = time.Now().UTC()
	m.books[book.Slug] = stored

	return &stored, nil
}

func (m *memStore) Delete(_ context.Context, slug string) error {
	if _, ok := m.books[slug]; !ok {
		return ErrNotFound
	}
	delete(m.books, slug)
	return nil
}

func newTestService(t *testing.T) (*Service, *memStore, string) {
	t.Helper()

	root := t.TempDir()
	store := newMemStore()

	svc, err := New(store, root)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return svc, store, root
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Moby-Dick":              "moby-dick",
		"A Tale of Two Cities":   "a-tale-of-two-cities",
		"  Leaves of Grass!  ":   "leaves-of-grass",
		"Ulysses (1922 edition)": "ulysses-1922-edition",
		"!!!":                    "",
		"Crime & Punishment":     "crime-punishment",
		"the brothers KARAMAZOV": "the-brothers-karamazov",
	}

	for title, want := range cases {
		if got := Slugify(title); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestUpload_TextDocument(t *testing.T) {
	svc, _, root := newTestService(t)

	content := []byte("Call me Ishmael. Some years ago, never mind how long precisely.")

	book, err := svc.Upload(context.Background(), "Moby-Dick", "Herman Melville", "moby.txt", content)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if book.Slug != "moby-dick" {
		t.Errorf("expected slug moby-dick, got %q", book.Slug)
	}

	if book.Format != FormatText {
		t.Errorf("expected text format, got %q", book.Format)
	}

	if book.WordCount != 11 {
		t.Errorf("expected 11 words, got %d", book.WordCount)
	}

	data, err := os.ReadFile(filepath.Join(root, "moby-dick.txt"))
	if err != nil {
		t.Fatalf("expected document on disk: %v", err)
	}

	if string(data) != string(content) {
		t.Error("stored document does not match the upload")
	}
}

func TestUpload_DuplicateSlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "Moby-Dick", "", "a.txt", []byte("first copy")); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}

	_, err := svc.Upload(ctx, "Moby Dick", "", "b.txt", []byte("second copy"))
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestUpload_RejectsUnsupportedFormat(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), "Moby-Dick", "", "moby.epub", []byte("data"))
	if !errors.Is(err, ErrBadFormat) {
		t.Fatalf("expected ErrBadFormat, got %v", err)
	}
}

func TestUpload_RejectsEmptyDocument(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Upload(context.Background(), "Moby-Dick", "", "moby.txt", nil); err == nil {
		t.Fatal("expected error for empty upload")
	}

	_, err := svc.Upload(context.Background(), "Blank", "", "blank.txt", []byte("   \n\t  "))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument for whitespace-only text, got %v", err)
	}
}

func TestContent_ReturnsText(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "Moby-Dick", "", "moby.txt", []byte("Call me Ishmael.")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	text, err := svc.Content(ctx, "moby-dick")
	if err != nil {
		t.Fatalf("content failed: %v", err)
	}

	if text != "Call me Ishmael." {
		t.Errorf("unexpected content: %q", text)
	}
}

func TestContent_UnknownSlug(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Content(context.Background(), "no-such-book")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContent_RejectsPathEscape(t *testing.T) {
	svc, store, _ := newTestService(t)

	// a row pointing outside the library root must not be readable
	store.books["evil"] = Book{
		Slug:     "evil",
		Title:    "Evil",
		Format:   FormatText,
		FilePath: "../../etc/passwd",
	}

	text, err := svc.Content(context.Background(), "evil")
	if err == nil && text != "" {
		t.Fatal("expected traversal path to be unreadable")
	}
}

func TestDelete_RemovesCatalogRowAndFile(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "Moby-Dick", "", "moby.txt", []byte("Call me Ishmael.")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if err := svc.Delete(ctx, "moby-dick"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Get(ctx, "moby-dick"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "moby-dick.txt")); !os.IsNotExist(err) {
		t.Error("expected document to be removed from disk")
	}
}
