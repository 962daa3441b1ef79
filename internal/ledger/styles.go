package ledger

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorError   lipgloss.Color = "#f38ba8"
	colorWarn    lipgloss.Color = "#f9e2af"
)

var (
	dateStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	descStyle    = lipgloss.NewStyle().Foreground(colorText)
	catStyle     = lipgloss.NewStyle().Foreground(colorAccent)
	uncatStyle   = lipgloss.NewStyle().Foreground(colorWarn).Italic(true)
	debitStyle   = lipgloss.NewStyle().Foreground(colorError)
	creditStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	metaStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	actionStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	bannerStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	bannerSubtle = lipgloss.NewStyle().Foreground(colorMuted)
)

// amountStyle picks the color for a signed amount.
func amountStyle(cents int64) lipgloss.Style {
	if cents < 0 {
		return debitStyle
	}
	return creditStyle
}
