package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SettingsTable lists dotted settings ("api.timeout") grouped under their
// first segment, in insertion order.
type SettingsTable struct {
	Title string

	sections []string
	rows     map[string][][2]string
}

// NewSettingsTable returns an empty table.
func NewSettingsTable(title string) *SettingsTable {
	return &SettingsTable{Title: title, rows: make(map[string][][2]string)}
}

// Add records key = value. Keys without a dot go under "general".
func (t *SettingsTable) Add(key, value string) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		section, name = "general", key
	}
	if _, seen := t.rows[section]; !seen {
		t.sections = append(t.sections, section)
	}
	t.rows[section] = append(t.rows[section], [2]string{name, value})
}

// Len is the number of settings added.
func (t *SettingsTable) Len() int {
	n := 0
	for _, r := range t.rows {
		n += len(r)
	}
	return n
}

// View renders the table. Values are cut to maxWidth cells when
// maxWidth > 0.
func (t *SettingsTable) View(styles Styles, maxWidth int) string {
	if t.Len() == 0 {
		return ""
	}

	keyWidth := 0
	for _, rows := range t.rows {
		for _, r := range rows {
			keyWidth = max(keyWidth, lipgloss.Width(r[0]))
		}
	}
	keyStyle := styles.Body.Width(keyWidth + 2).PaddingLeft(2)

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}
	for i, section := range t.sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styles.Bold.Render(section))
		sb.WriteString("\n")
		for _, r := range t.rows[section] {
			v := r[1]
			if v == "" {
				v = styles.Muted.Render("-")
			} else if maxWidth > 0 && lipgloss.Width(v) > maxWidth {
				v = truncate(v, maxWidth)
			}
			sb.WriteString(keyStyle.Render(r[0]))
			sb.WriteString(" ")
			sb.WriteString(styles.Body.Render(v))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// Cards renders label/value pairs side by side, one bordered card each.
func Cards(styles Styles, labels, values []string) string {
	cards := make([]string, 0, len(labels))
	for i, label := range labels {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		cards = append(cards, styles.Card.Render(styles.Muted.Render(label)+"\n"+styles.Bold.Render(v)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}
