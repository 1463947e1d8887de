package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// A renderer that cannot be built degrades to returning the markdown as is.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PreviewMarkdown lists the ordered trials as a markdown table, the way the
// operator checks a catalog before starting.
func PreviewMarkdown(trials []domain.Trial, dropped int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Ordered tasks (%d)\n\n", len(trials))

	if len(trials) == 0 {
		b.WriteString("_No task matched the order table._\n")
	} else {
		b.WriteString("| # | ID | Description |\n|---:|---|---|\n")
		for i, t := range trials {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, escapeCell(t.ID), escapeCell(t.Description))
		}
	}

	if dropped > 0 {
		fmt.Fprintf(&b, "\n> %d order entries referenced unknown task ids and were dropped.\n", dropped)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
