package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

func NewApp() *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	delegate := list.NewDefaultDelegate()
	bookList := list.New([]list.Item{}, delegate, 0, 0)
	bookList.Title = "Library"
	bookList.SetShowStatusBar(false)

	return &Model{
		state:   StateLibrary,
		client:  NewReaderClient(),
		library: bookList,
		spinner: s,
		loading: true,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.client.LoadBooksCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == StateLibrary {
				return m, tea.Quit
			}

			// q backs out one level everywhere else
			m.back()
			return m, nil

		case "esc":
			m.back()
			return m, nil

		case "e", "enter":
			if cmd := m.handleSelect(msg.String()); cmd != nil {
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.library.SetSize(msg.Width-2, msg.Height-2)

		if m.reader != nil {
			m.reader.resize(msg.Width, msg.Height)
		}

		m.resizeOverlay()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case BooksLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.books))
		for i, b := range msg.books {
			items[i] = b
		}
		m.library.SetItems(items)
		return m, nil

	case ContentLoadedMsg:
		m.loading = false
		m.reader = newReader(msg.slug, msg.title, msg.content)
		m.reader.resize(m.width, m.height)
		m.state = StateReading
		return m, nil

	case ExplainResultMsg:
		m.loading = false
		m.status = ""
		m.showExplanation(msg)
		return m, nil

	case PaywallDeniedMsg:
		m.loading = false
		m.status = creditStyle.Render(fmt.Sprintf(
			"out of credits · next free credit in %d min · buy a pack to keep reading",
			msg.minutesUntilNextCredit))
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	return m.updateCurrent(msg)
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	if m.loading {
		return fmt.Sprintf("\n  %s working...\n", m.spinner.View())
	}

	switch m.state {
	case StateLibrary:
		return logo + "\n" + m.library.View()

	case StateReading:
		return m.reader.View(m.status)

	case StateExplanation:
		header := titleStyle.Render("Explanation") +
			statusStyle.Render("  "+m.explanationMeta)
		help := helpStyle.Render("esc back to reading")

		return header + "\n" + borderStyle.Render(m.overlay.View()) + "\n" + help

	default:
		return "unknown state"
	}
}

func (m *Model) updateCurrent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case StateLibrary:
		m.library, cmd = m.library.Update(msg)

	case StateReading:
		m.reader, cmd = m.reader.Update(msg)

	case StateExplanation:
		m.overlay, cmd = m.overlay.Update(msg)
	}

	return m, cmd
}

// moves one level up: explanation -> reading -> library
func (m *Model) back() {
	switch m.state {
	case StateExplanation:
		m.state = StateReading

	case StateReading:
		m.state = StateLibrary
		m.reader = nil
		m.status = ""
	}
}

func (m *Model) handleSelect(key string) tea.Cmd {
	switch m.state {
	case StateLibrary:
		if key != "enter" {
			return nil
		}

		item, ok := m.library.SelectedItem().(bookItem)
		if !ok {
			return nil
		}

		m.loading = true
		return tea.Batch(m.spinner.Tick, m.client.LoadContentCmd(item.slug))

	case StateReading:
		if key != "e" {
			return nil
		}

		passage := m.reader.Selected()
		if passage == "" {
			return nil
		}

		m.loading = true
		return tea.Batch(m.spinner.Tick,
			m.client.ExplainCmd(passage, m.reader.Surrounding(), m.reader.title))
	}

	return nil
}

func (m *Model) showExplanation(msg ExplainResultMsg) {
	meta := fmt.Sprintf("model: %s", msg.model)
	if msg.cached {
		meta += " · cached (free)"
	} else {
		meta += fmt.Sprintf(" · %.1f credits left", msg.creditsRemaining)
	}

	m.explanation = msg.explanation
	m.explanationMeta = meta
	m.state = StateExplanation
	m.resizeOverlay()
}

func (m *Model) resizeOverlay() {
	if m.explanation == "" {
		return
	}

	width := m.width - 6
	if width < 20 {
		width = 20
	}

	height := m.height - 6
	if height < 5 {
		height = 5
	}

	m.overlay = viewport.New(width, height)
	m.overlay.SetContent(m.renderMarkdown(m.explanation, width))
}

func (m *Model) renderMarkdown(text string, width int) string {
	if m.glamourRenderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}

		m.glamourRenderer = renderer
	}

	rendered, err := m.glamourRenderer.Render(text)
	if err != nil {
		return text
	}

	return rendered
}
