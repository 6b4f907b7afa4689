// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	StyleSubtitle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	StyleStatusGood = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StyleStatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StyleStatusBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
