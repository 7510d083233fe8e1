package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Toggle   lipgloss.Style
	Selected lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style
	Section  lipgloss.Style
	Body     lipgloss.Style
	Index    lipgloss.Style
	NextStep lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() Styles {
	blue := lipgloss.Color("33")
	slate := lipgloss.Color("245")

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(blue),
		Subtitle: lipgloss.NewStyle().Foreground(slate),
		Label:    lipgloss.NewStyle().Bold(true),
		Toggle:   lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(slate),
		Selected: lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(blue).Foreground(blue).Bold(true),
		Button:   lipgloss.NewStyle().Padding(0, 2).Background(blue).Foreground(lipgloss.Color("231")),
		Disabled: lipgloss.NewStyle().Padding(0, 2).Foreground(slate).Faint(true),
		Section:  lipgloss.NewStyle().Bold(true).BorderLeft(true).BorderStyle(lipgloss.ThickBorder()).BorderForeground(blue).PaddingLeft(1),
		Body:     lipgloss.NewStyle().PaddingLeft(2),
		Index:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		NextStep: lipgloss.NewStyle().BorderLeft(true).BorderStyle(lipgloss.ThickBorder()).BorderForeground(blue).PaddingLeft(1).MarginLeft(2),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Help:     lipgloss.NewStyle().Foreground(slate).Faint(true),
	}
}
