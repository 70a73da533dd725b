package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
)

// NewTermRenderer builds a glamour renderer for assistant messages. theme is
// the persisted preference: "light", "dark" or "system" (auto-detected).
func NewTermRenderer(theme string, wordWrap int) (*glamour.TermRenderer, error) {
	options := []glamour.TermRendererOption{
		glamour.WithWordWrap(wordWrap),
	}
	switch theme {
	case "light":
		options = append(options, glamour.WithStandardStyle("light"))
	case "dark":
		options = append(options, glamour.WithStandardStyle("dark"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}

	r, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build markdown renderer")
	}
	return r, nil
}

// Markdown renders text for the terminal, falling back to the raw text when
// rendering fails.
func Markdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
