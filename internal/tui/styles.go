package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorAmber     = lipgloss.Color("#FFB000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			MarginTop(1).
			MarginBottom(1)

	paragraphStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	selectedParagraphStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(lipgloss.Color("#333333"))

	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	creditStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Bold(true)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Bold(true)
)

const logo = `
  ███████╗██╗  ██╗██████╗ ██╗      █████╗ ██╗███╗   ██╗███████╗██████╗
  ██╔════╝╚██╗██╔╝██╔══██╗██║     ██╔══██╗██║████╗  ██║██╔════╝██╔══██╗
  █████╗   ╚███╔╝ ██████╔╝██║     ███████║██║██╔██╗ ██║█████╗  ██████╔╝
  ██╔══╝   ██╔██╗ ██╔═══╝ ██║     ██╔══██║██║██║╚██╗██║██╔══╝  ██╔══██╗
  ███████╗██╔╝ ██╗██║     ███████╗██║  ██║██║██║ ╚████║███████╗██║  ██║
  ╚══════╝╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝
`

func (b bookItem) describe() string {
	desc := b.author
	if desc == "" {
		desc = "unknown author"
	}

	if b.words > 0 {
		desc = fmt.Sprintf("%s · %d words", desc, b.words)
	}

	return desc
}

func errorView(err error) string {
	return fmt.Sprintf("\n  %s\n\n  Press q to exit\n", errorStyle.Render(fmt.Sprintf("Error: %v", err)))
}
