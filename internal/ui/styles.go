package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasks-go/internal/task"
)

var (
	primaryColor = lipgloss.Color("#A78BFA")
	mutedColor   = lipgloss.Color("#9CA3AF")
	borderColor  = lipgloss.Color("#6B7280")
	errorColor   = lipgloss.Color("#F87171")

	statusColors = map[task.Status]lipgloss.Color{
		task.StatusOpen:       lipgloss.Color("#9CA3AF"),
		task.StatusInProgress: lipgloss.Color("#10B981"),
		task.StatusBlocked:    lipgloss.Color("#F59E0B"),
		task.StatusCompleted:  lipgloss.Color("#A78BFA"),
	}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(borderColor)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor)
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
)

func statusStyle(s task.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColors[s])
}
