package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
	Tree     lipgloss.Color
	Path     lipgloss.Color
	Trail    lipgloss.Color
	Obstacle lipgloss.Color
	Goal     lipgloss.Color
	Vehicle  lipgloss.Color
}

var (
	ThemeTerminal = Theme{
		Name:     "terminal",
		Primary:  lipgloss.Color("86"),
		Text:     lipgloss.Color("252"),
		Muted:    lipgloss.Color("240"),
		Success:  lipgloss.Color("42"),
		Warning:  lipgloss.Color("214"),
		Error:    lipgloss.Color("196"),
		Tree:     lipgloss.Color("238"),
		Path:     lipgloss.Color("51"),
		Trail:    lipgloss.Color("111"),
		Obstacle: lipgloss.Color("203"),
		Goal:     lipgloss.Color("226"),
		Vehicle:  lipgloss.Color("231"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Primary:  lipgloss.Color("#00ff00"), // Green phosphor
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Success:  lipgloss.Color("#88ff88"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
		Tree:     lipgloss.Color("#006600"),
		Path:     lipgloss.Color("#88ff88"),
		Trail:    lipgloss.Color("#00cc00"),
		Obstacle: lipgloss.Color("#ffff00"),
		Goal:     lipgloss.Color("#ffffff"),
		Vehicle:  lipgloss.Color("#ffffff"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Primary:  lipgloss.Color("#00a8cc"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Success:  lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ffcc00"),
		Error:    lipgloss.Color("#ff4444"),
		Tree:     lipgloss.Color("#1f4e6b"),
		Path:     lipgloss.Color("#ffd700"),
		Trail:    lipgloss.Color("#00a8cc"),
		Obstacle: lipgloss.Color("#ff6b6b"),
		Goal:     lipgloss.Color("#00ff88"),
		Vehicle:  lipgloss.Color("#ffffff"),
	}

	Themes = []Theme{ThemeTerminal, ThemeRetroGreen, ThemeOcean}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Next returns the theme after t in Themes.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func (t Theme) InkStyle(ink Ink) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch ink {
	case InkTree:
		return s.Foreground(t.Tree)
	case InkTrail:
		return s.Foreground(t.Trail)
	case InkObstacle:
		return s.Foreground(t.Obstacle)
	case InkPath:
		return s.Foreground(t.Path).Bold(true)
	case InkGoal:
		return s.Foreground(t.Goal).Bold(true)
	case InkVehicle:
		return s.Foreground(t.Vehicle).Bold(true)
	default:
		return s.Foreground(t.Muted)
	}
}
