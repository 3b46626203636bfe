package ui

import (
	"fmt"
	"strings"
	"sync"

	"leaddesk/internal/leads"

	"github.com/charmbracelet/glamour"
)

// LeadMarkdown renders a lead as a markdown document.
func LeadMarkdown(l leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.FullName())
	fmt.Fprintf(&b, "**%s** · %s\n\n", l.Status.Label(), l.Source.Label())

	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) {
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(v, "|", `\|`))
	}
	row("ID", string(l.ID))
	row("Email", l.Email)
	row("Phone", l.Phone)
	row("Company", l.Company)
	row("Location", strings.Trim(l.City+", "+l.State, ", "))
	if l.Score != nil {
		row("Score", fmt.Sprintf("%d (%s)", *l.Score, bandName(leads.BandFor(*l.Score))))
	} else {
		row("Score", "")
	}
	row("Value", leads.FormatValue(l.Value()))
	if l.IsQualified {
		row("Qualified", "Yes")
	} else {
		row("Qualified", "No")
	}
	if l.CreatedAt != nil {
		row("Created", l.CreatedAt.Local().Format("2006-01-02"))
	}
	if l.UpdatedAt != nil {
		row("Updated", l.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return b.String()
}

func bandName(b leads.ScoreBand) string {
	switch b {
	case leads.ScoreHigh:
		return "high"
	case leads.ScoreMedium:
		return "medium"
	default:
		return "low"
	}
}

// MarkdownRenderer caches a glamour renderer per width and theme.
type MarkdownRenderer struct {
	mu       sync.Mutex
	width    int
	dark     bool
	renderer *glamour.TermRenderer
}

// Render renders md wrapped at width. If glamour fails the raw markdown
// is returned.
func (r *MarkdownRenderer) Render(md string, width int, dark bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderer == nil || r.width != width || r.dark != dark {
		style := "light"
		if dark {
			style = "dark"
		}
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		r.renderer, r.width, r.dark = tr, width, dark
	}

	out, err := r.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
