package ui

// Layout constants for consistent spacing
const (
	ViewportHorizontalPadding = 4

	HeaderHeight   = 2
	StatsHeight    = 4
	ControlsHeight = 2
	PagerHeight    = 2
	FooterHeight   = 2
	ToastHeight    = 2

	MinimumTerminalWidth = 80
	CompactModeWidth     = 110
	DetailPaneWidth      = 48
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ContentWidth returns the usable content width
func (l LayoutConfig) ContentWidth() int {
	return max(l.TerminalWidth-ViewportHorizontalPadding, 20)
}

// TableHeight returns the rows available to the lead grid.
func (l LayoutConfig) TableHeight() int {
	h := l.TerminalHeight - HeaderHeight - StatsHeight - ControlsHeight - PagerHeight - FooterHeight - ToastHeight
	return max(h, 5)
}

// DetailWidth returns the width of the lead detail pane.
func (l LayoutConfig) DetailWidth() int {
	if l.IsCompact {
		return l.ContentWidth()
	}
	return DetailPaneWidth
}
