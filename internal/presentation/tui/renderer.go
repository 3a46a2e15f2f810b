package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders line text as markdown using
// glamour, so authored emphasis and lists survive the terminal.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		// No usable terminal profile; hand the text back untouched.
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
