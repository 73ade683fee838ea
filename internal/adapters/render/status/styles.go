package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	child    lipgloss.Style
	detail   lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	label    lipgloss.Style
	meta     lipgloss.Style
	bold     lipgloss.Style
	heading  lipgloss.Style
	present  lipgloss.Style
	absent   lipgloss.Style
	away     lipgloss.Style
	neutral  lipgloss.Style
	unread   lipgloss.Style
	timeSpan lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		child:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		bold:     lipgloss.NewStyle().Bold(true),
		heading:  lipgloss.NewStyle().Bold(true).Underline(true),
		present:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		absent:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		away:     lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		neutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		unread:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		timeSpan: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	}
}
