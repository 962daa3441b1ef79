package director

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Section is a static group of rows with optional header and footer chrome.
// The data section uses the same chrome fields and ignores Rows.
type Section struct {
	Rows []Row

	HeaderTitle string
	FooterTitle string
	HeaderView  View
	FooterView  View

	// Explicit heights win over the natural height of the views.
	HeaderHeight *int
	FooterHeight *int
}

// NewSection returns a section holding rows.
func NewSection(rows ...Row) Section {
	return Section{Rows: rows}
}

// Height returns a pointer suitable for the HeaderHeight and FooterHeight fields.
func Height(h int) *int { return &h }

func (s Section) clone() Section {
	s.Rows = slices.Clone(s.Rows)
	return s
}

func (s Section) headerHeight(width int) int {
	return chromeHeight(s.HeaderHeight, s.HeaderView, width)
}

func (s Section) footerHeight(width int) int {
	return chromeHeight(s.FooterHeight, s.FooterView, width)
}

func chromeHeight(explicit *int, v View, width int) int {
	if explicit != nil {
		return *explicit
	}
	if v != nil {
		return lipgloss.Height(v.View(width))
	}
	return 0
}

func cloneSections(in []Section) []Section {
	if len(in) == 0 {
		return nil
	}
	out := make([]Section, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}
