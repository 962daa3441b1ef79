package table

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSurface lipgloss.Color = "#313244"
	colorSelect  lipgloss.Color = "#45475a"
)

// Styles controls how the table draws chrome around cells.
type Styles struct {
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles matches the app palette.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Footer:   lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		Cursor:   lipgloss.NewStyle().Foreground(colorText).Background(colorSurface),
		Selected: lipgloss.NewStyle().Foreground(colorText).Background(colorSelect).Bold(true),
	}
}
