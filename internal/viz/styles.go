package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from the current theme on every frame so a theme
// switch takes effect immediately.
type styles struct {
	canvas   lipgloss.Style
	stats    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	active   lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	finished lipgloss.Style
	failed   lipgloss.Style
}

func themeStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Text).Padding(1, 2),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		header:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:    lipgloss.NewStyle().Foreground(t.Secondary),
		active:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Success).Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		finished: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		failed:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// ProgressBar renders percent, clamped to [0, 1], as a bar of the given
// width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func Separator(width int) string {
	if width < 8 {
		return strings.Repeat("─", width)
	}
	mid := width / 2
	return strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3)
}
