package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateLibrary AppState = iota
	StateReading
	StateExplanation
)

// main TUI application model
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	client *ReaderClient

	library list.Model
	reader  *ReaderModel

	// explanation overlay
	explanation     string
	explanationMeta string
	overlay         viewport.Model
	glamourRenderer *glamour.TermRenderer

	loading bool
	spinner spinner.Model
	status  string
}

// a library entry shown in the book list
type bookItem struct {
	slug   string
	title  string
	author string
	words  int
}

func (b bookItem) Title() string       { return b.title }
func (b bookItem) Description() string { return b.describe() }
func (b bookItem) FilterValue() string { return b.title + " " + b.author }

// the open book
type ReaderModel struct {
	slug       string
	title      string
	paragraphs []string
	cursor     int
	viewport   viewport.Model
	width      int
	height     int
	ready      bool
}

// sent when the library list finishes loading
type BooksLoadedMsg struct {
	books []bookItem
}

// sent when a book's content finishes loading
type ContentLoadedMsg struct {
	slug    string
	title   string
	content string
}

// sent when an explanation arrives
type ExplainResultMsg struct {
	explanation      string
	model            string
	cached           bool
	creditsRemaining float64
}

// sent when the paywall denies an explanation
type PaywallDeniedMsg struct {
	minutesUntilNextCredit int
	creditsRemaining       float64
}

// sent when a request fails
type ErrorMsg struct {
	err error
}
