package explain

import (
	"fmt"
	"strings"
)

const maxPassageLength = 4000

// assembles the system prompt for an explanation request
func buildSystemPrompt(input Input) string {
	var builder strings.Builder

	builder.WriteString(`You are a reading companion. The user is reading a text and has selected a passage they want explained.

Guidelines:
- Explain the selected passage clearly and concisely
- Define archaic or technical vocabulary the passage uses
- Point out allusions, references, or literary devices when relevant
- Stay grounded in the passage itself; do not speculate beyond it
- Keep the explanation under three paragraphs`)

	if input.BookTitle != "" {
		builder.WriteString(fmt.Sprintf("\n\nThe passage is from %q.", input.BookTitle))
	}

	return builder.String()
}

// assembles the user message: the selected passage plus any surrounding
// context the reader's client sent along
func buildUserMessage(input Input) string {
	var builder strings.Builder

	if input.Context != "" {
		builder.WriteString("Surrounding context:\n\n")
		builder.WriteString(truncate(input.Context, maxPassageLength))
		builder.WriteString("\n\n")
	}

	builder.WriteString("Explain this passage:\n\n")
	builder.WriteString(truncate(input.Passage, maxPassageLength))

	return builder.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
