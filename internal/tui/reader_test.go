package tui

import (
	"strings"
	"testing"
)

func TestSplitParagraphs(t *testing.T) {
	content := "First paragraph.\n\nSecond paragraph\nspanning two lines.\r\n\r\n\n\nThird."

	paragraphs := splitParagraphs(content)

	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(paragraphs), paragraphs)
	}

	if paragraphs[1] != "Second paragraph\nspanning two lines." {
		t.Errorf("unexpected second paragraph: %q", paragraphs[1])
	}
}

func TestSurrounding_ClampsAtEdges(t *testing.T) {
	reader := newReader("test", "Test", "one\n\ntwo\n\nthree\n\nfour\n\nfive")

	// cursor at the start: window can't reach before the first paragraph
	got := reader.Surrounding()
	if !strings.HasPrefix(got, "one") || strings.Contains(got, "four") {
		t.Errorf("unexpected window at start: %q", got)
	}

	reader.cursor = 4
	got = reader.Surrounding()
	if !strings.HasSuffix(got, "five") || strings.Contains(got, "two") {
		t.Errorf("unexpected window at end: %q", got)
	}
}

func TestSelected_EmptyDocument(t *testing.T) {
	reader := newReader("test", "Test", "")

	if got := reader.Selected(); got != "" {
		t.Errorf("expected empty selection, got %q", got)
	}
}
