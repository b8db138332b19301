package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(48)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	graphStyle = lipgloss.NewStyle().Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// styles is the per-theme palette used by the replay view.
type styles struct {
	header  lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	graph   lipgloss.Style
	canvas  lipgloss.Style
}

func stylesFor(t Theme) styles {
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(t.Header).MarginBottom(1),
		value:   lipgloss.NewStyle().Foreground(t.Value),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Playing),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		success: lipgloss.NewStyle().Bold(true).Foreground(t.Reached),
		failure: lipgloss.NewStyle().Bold(true).Foreground(t.Failed),
		graph:   graphStyle.Foreground(t.Chart),
		canvas:  canvasStyle.Foreground(t.Arm),
	}
}

// ProgressBar renders a fixed-width bar for a fraction in [0, 1].
func ProgressBar(fraction float64, width int, style lipgloss.Style) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}
