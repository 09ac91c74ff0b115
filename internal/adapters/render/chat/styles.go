package chat

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	room     lipgloss.Style
	counter  lipgloss.Style
	sender   lipgloss.Style
	self     lipgloss.Style
	text     lipgloss.Style
	member   lipgloss.Style
	memberID lipgloss.Style
	empty    lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
	prompt   lipgloss.Style
	help     lipgloss.Style
	pane     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		room:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		counter:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		sender:   lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		self:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("84")),
		text:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		member:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		memberID: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		empty:    lipgloss.NewStyle().Faint(true),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		errText:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		help:     lipgloss.NewStyle().Faint(true),
		pane:     lipgloss.NewStyle().MarginRight(2),
	}
}
