package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

const helpText = "[/] filter  [s] save  [1-9] saved  [enter] open  [t] flag  [p] status  [d] delete  [r] refresh  [R] reset  [q] quit"

func (a *App) View() string {
	title := titleStyle.Render("datatable")
	if a.filterExpr != "" {
		title += helpStyle.Render("  " + a.filterExpr)
	}

	var prompt string
	switch a.mode {
	case modeFilter, modeSaveName:
		prompt = a.input.View()
	default:
		prompt = helpStyle.Render(helpText)
	}

	status := a.status
	style := statusStyle
	if strings.HasPrefix(status, "error: ") {
		style = errorStyle
	}
	counts := fmt.Sprintf("%d total · %d uncategorized · line %d", a.total, a.uncategorized, a.offset+1)
	gap := max(a.width-lipgloss.Width(status)-lipgloss.Width(counts), 1)
	statusLine := style.Render(status) + strings.Repeat(" ", gap) + helpStyle.Render(counts)

	lines := []string{
		ansi.Truncate(title, a.width, ""),
		a.table.View(),
		ansi.Truncate(prompt, a.width, "…"),
		ansi.Truncate(statusLine, a.width, ""),
	}
	return strings.Join(lines, "\n")
}
