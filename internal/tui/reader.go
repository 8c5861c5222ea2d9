package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// paragraphs of surrounding context sent with an explanation request
const contextWindow = 2

func newReader(slug, title, content string) *ReaderModel {
	return &ReaderModel{
		slug:       slug,
		title:      title,
		paragraphs: splitParagraphs(content),
	}
}

// breaks a document into paragraphs on blank lines
func splitParagraphs(content string) []string {
	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")

	paragraphs := make([]string, 0, len(blocks))
	for _, block := range blocks {
		p := strings.TrimSpace(block)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	return paragraphs
}

// the paragraph the cursor is on
func (r *ReaderModel) Selected() string {
	if len(r.paragraphs) == 0 {
		return ""
	}

	return r.paragraphs[r.cursor]
}

// the paragraphs around the cursor, for grounding the explanation
func (r *ReaderModel) Surrounding() string {
	start := r.cursor - contextWindow
	if start < 0 {
		start = 0
	}

	end := r.cursor + contextWindow + 1
	if end > len(r.paragraphs) {
		end = len(r.paragraphs)
	}

	return strings.Join(r.paragraphs[start:end], "\n\n")
}

func (r *ReaderModel) resize(width, height int) {
	r.width = width
	r.height = height

	// leave room for the title and help lines
	vpHeight := height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !r.ready {
		r.viewport = viewport.New(width, vpHeight)
		r.ready = true
	} else {
		r.viewport.Width = width
		r.viewport.Height = vpHeight
	}

	r.render()
}

func (r *ReaderModel) moveCursor(delta int) {
	r.cursor += delta

	if r.cursor < 0 {
		r.cursor = 0
	}

	if r.cursor >= len(r.paragraphs) {
		r.cursor = len(r.paragraphs) - 1
	}

	r.render()
}

func (r *ReaderModel) render() {
	if !r.ready {
		return
	}

	var builder strings.Builder
	var cursorLine int

	for i, p := range r.paragraphs {
		style := paragraphStyle
		if i == r.cursor {
			style = selectedParagraphStyle
			cursorLine = strings.Count(builder.String(), "\n")
		}

		builder.WriteString(style.Width(r.viewport.Width).Render(p))
		builder.WriteString("\n\n")
	}

	r.viewport.SetContent(builder.String())
	scrollTo(&r.viewport, cursorLine)
}

// keeps the cursor's paragraph inside the visible window
func scrollTo(vp *viewport.Model, line int) {
	top := vp.YOffset
	bottom := top + vp.Height - 1

	if line < top {
		vp.SetYOffset(line)
	} else if line > bottom-2 {
		vp.SetYOffset(line - vp.Height + 3)
	}
}

func (r *ReaderModel) Update(msg tea.Msg) (*ReaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			r.moveCursor(1)
		case "k", "up":
			r.moveCursor(-1)
		case "pgdown", "f":
			r.moveCursor(5)
		case "pgup", "b":
			r.moveCursor(-5)
		case "g":
			r.cursor = 0
			r.render()
		case "G":
			r.cursor = len(r.paragraphs) - 1
			r.render()
		}

	case tea.WindowSizeMsg:
		r.resize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	r.viewport, cmd = r.viewport.Update(msg)

	return r, cmd
}

func (r *ReaderModel) View(status string) string {
	if !r.ready {
		return "\n  loading..."
	}

	header := titleStyle.Render(r.title) +
		statusStyle.Render(fmt.Sprintf("  ¶ %d/%d", r.cursor+1, len(r.paragraphs)))

	help := helpStyle.Render("j/k move · e explain · esc library · q quit")

	if status != "" {
		help = statusStyle.Render(status) + "\n" + help
	}

	return header + "\n" + r.viewport.View() + "\n" + help
}
