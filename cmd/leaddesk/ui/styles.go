// Package ui provides the visual styling for the leaddesk console.
// Light and dark palettes are chosen from config or the terminal.
package ui

import (
	"os"
	"strconv"
	"strings"

	"leaddesk/internal/leads"
	"leaddesk/internal/notify"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light Mode Colors (Default)
	LightForeground = lipgloss.Color("#1f2937") // gray-800
	LightPrimary    = lipgloss.Color("#2563eb") // blue-600
	LightAccent     = lipgloss.Color("#3b82f6") // blue-500
	LightSecondary  = lipgloss.Color("#f3f4f6") // gray-100
	LightMuted      = lipgloss.Color("#6b7280") // gray-500
	LightBorder     = lipgloss.Color("#e5e7eb") // gray-200

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#f3f4f6")
	DarkPrimary    = lipgloss.Color("#60a5fa") // blue-400
	DarkAccent     = lipgloss.Color("#93c5fd")
	DarkSecondary  = lipgloss.Color("#1f2937")
	DarkMuted      = lipgloss.Color("#9ca3af")
	DarkBorder     = lipgloss.Color("#374151")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#dc2626") // danger-600
	Success     = lipgloss.Color("#16a34a") // success-600
	Warning     = lipgloss.Color("#d97706") // warning-600
	Info        = lipgloss.Color("#0891b2")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeFor maps the ui.theme setting to a theme. "auto" detects.
func ThemeFor(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses from COLORFGBG, defaulting to dark.
func DetectTheme() Theme {
	// Format is "foreground;background"
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if bg == 7 || bg >= 9 {
				return LightTheme()
			}
			return DarkTheme()
		}
	}
	return DarkTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Card    lipgloss.Style
	Dialog  lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Label    lipgloss.Style

	// Forms
	FieldError lipgloss.Style
	Focused    lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Padding(1, 3),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Width(14),

		FieldError: lipgloss.NewStyle().
			Foreground(Destructive),

		Focused: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Padding(0, 1),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", max(width, 0)))
}

var statusColors = map[leads.Status]lipgloss.Color{
	leads.StatusNew:       Info,
	leads.StatusContacted: Warning,
	leads.StatusQualified: lipgloss.Color("#7c3aed"),
	leads.StatusLost:      Destructive,
	leads.StatusWon:       Success,
}

// StatusBadge renders a lead status. Unknown statuses use the new style
// but keep their own label.
func (s Styles) StatusBadge(st leads.Status) string {
	return s.Badge.Foreground(statusColors[st.Style()]).Render(st.Label())
}

// Score renders a score colored by band. Unset scores render blank.
func (s Styles) Score(score *int) string {
	if score == nil {
		return ""
	}
	var c lipgloss.Color
	switch leads.BandFor(*score) {
	case leads.ScoreHigh:
		c = Success
	case leads.ScoreMedium:
		c = Warning
	default:
		c = Destructive
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(strconv.Itoa(*score))
}

// Qualified renders Yes/No.
func (s Styles) Qualified(q bool) string {
	if q {
		return s.Success.Render("Yes")
	}
	return s.Muted.Render("No")
}

// Notice renders a toast line.
func (s Styles) Notice(n notify.Notice) string {
	switch n.Level {
	case notify.LevelSuccess:
		return s.Success.Render("✓ " + n.Text)
	case notify.LevelError:
		return s.Error.Render("✗ " + n.Text)
	default:
		return s.Info.Render(n.Text)
	}
}
