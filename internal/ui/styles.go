package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/saravenpi/chorus/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("213")).
		MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("213"))

	normalStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("255"))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("117"))

	messageFromMeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("111")).
		Align(lipgloss.Right)

	messageFromOtherStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("120"))

	messageHeaderStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true)

	inputStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("117")).
		Bold(true)

	tabStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Padding(0, 1)

	activeTabStyle = tabStyle.
		Foreground(lipgloss.Color("213")).
		Bold(true).
		Underline(true)

	reactionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	myReactionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("111")).
		Bold(true)

	callBarStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("120")).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(lipgloss.Color("238"))

	modalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("213")).
		Padding(1, 3)
)

func statusDot(s models.Status) string {
	switch s {
	case models.StatusOnline:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	case models.StatusAway:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("●")
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("○")
	}
}

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusOnline:
		return "В сети"
	case models.StatusAway:
		return "Отошёл"
	default:
		return "Не в сети"
	}
}
