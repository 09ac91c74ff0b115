package rooms

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	room       lipgloss.Style
	roomActive lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	counter    lipgloss.Style
	sender     lipgloss.Style
	self       lipgloss.Style
	text       lipgloss.Style
	member     lipgloss.Style
	memberID   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		room:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		roomActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("84")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		counter:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		sender:     lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		self:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("84")),
		text:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		member:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		memberID:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}
