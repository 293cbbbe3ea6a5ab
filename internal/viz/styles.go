package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the panel styles of one theme.
type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	status map[string]lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(13),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		graph:  lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		status: map[string]lipgloss.Style{
			"running":  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
			"paused":   lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
			"reached":  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
			"timeout":  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
			"failed":   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
			"canceled": lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		},
	}
}

func (s styles) statusLine(name string) string {
	st, ok := s.status[name]
	if !ok {
		st = s.value
	}
	return st.Render(strings.ToUpper(name))
}

// ProgressBar renders percent in [0, 1] as a bar width cells wide.
func ProgressBar(percent float64, width int, t Theme) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := t.Error
	if percent > 0.8 {
		color = t.Success
	} else if percent > 0.4 {
		color = t.Warning
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}
