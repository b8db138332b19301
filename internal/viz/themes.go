package viz

import "github.com/charmbracelet/lipgloss"

// Theme assigns colours to the parts of the replay view.
type Theme struct {
	Name    string
	Header  lipgloss.Color
	Arm     lipgloss.Color
	Chart   lipgloss.Color
	Value   lipgloss.Color
	Playing lipgloss.Color
	Paused  lipgloss.Color
	Reached lipgloss.Color
	Failed  lipgloss.Color
}

var (
	ThemeWorkshop = Theme{
		Name:    "workshop",
		Header:  lipgloss.Color("#f4a261"),
		Arm:     lipgloss.Color("#e9edf1"),
		Chart:   lipgloss.Color("#2a9d8f"),
		Value:   lipgloss.Color("#e9edf1"),
		Playing: lipgloss.Color("#8ac926"),
		Paused:  lipgloss.Color("#e9c46a"),
		Reached: lipgloss.Color("#8ac926"),
		Failed:  lipgloss.Color("#e63946"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Header:  lipgloss.Color("#33ff66"),
		Arm:     lipgloss.Color("#33ff66"),
		Chart:   lipgloss.Color("#1fae45"),
		Value:   lipgloss.Color("#a8ffbf"),
		Playing: lipgloss.Color("#a8ffbf"),
		Paused:  lipgloss.Color("#d8ff5c"),
		Reached: lipgloss.Color("#a8ffbf"),
		Failed:  lipgloss.Color("#ff5c5c"),
	}

	ThemeBlueprint = Theme{
		Name:    "blueprint",
		Header:  lipgloss.Color("#9ecfff"),
		Arm:     lipgloss.Color("#dceeff"),
		Chart:   lipgloss.Color("#4c9be8"),
		Value:   lipgloss.Color("#dceeff"),
		Playing: lipgloss.Color("#5fe0b5"),
		Paused:  lipgloss.Color("#ffd166"),
		Reached: lipgloss.Color("#5fe0b5"),
		Failed:  lipgloss.Color("#ff6b6b"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Header:  lipgloss.Color("15"),
		Arm:     lipgloss.Color("15"),
		Chart:   lipgloss.Color("250"),
		Value:   lipgloss.Color("252"),
		Playing: lipgloss.Color("15"),
		Paused:  lipgloss.Color("244"),
		Reached: lipgloss.Color("15"),
		Failed:  lipgloss.Color("244"),
	}

	Themes = []Theme{ThemeWorkshop, ThemePhosphor, ThemeBlueprint, ThemeMono}
)

// GetTheme returns a theme by name, falling back to workshop.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeWorkshop
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
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
