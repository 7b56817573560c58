package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	work       lipgloss.Style
	rest       lipgloss.Style
	transition lipgloss.Style
	paused     lipgloss.Style
	idle       lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	banner     lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		work:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		rest:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		transition: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		paused:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		idle:       lipgloss.NewStyle().Faint(true),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		banner: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")),
		barFill:  lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
