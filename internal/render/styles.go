package render

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("62")
	colorSecondary = lipgloss.Color("241")
	colorHighlight = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("78")
	colorError     = lipgloss.Color("196")
)

type styles struct {
	title   lipgloss.Style
	meta    lipgloss.Style
	body    lipgloss.Style
	link    lipgloss.Style
	article lipgloss.Style
	badge   lipgloss.Style
	note    lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	reading lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, width int) styles {
	return styles{
		title: r.NewStyle().Bold(true).Foreground(colorHighlight),
		meta:  r.NewStyle().Foreground(colorSecondary),
		body:  r.NewStyle().Width(width - 4),
		link:  r.NewStyle().Underline(true).Foreground(colorPrimary),
		article: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
		badge:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		note:    r.NewStyle().PaddingLeft(1),
		status:  r.NewStyle().Foreground(colorSuccess),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		muted:   r.NewStyle().Foreground(colorSecondary).Italic(true),
		reading: r.NewStyle().Foreground(colorHighlight),
	}
}
