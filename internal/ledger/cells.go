package ledger

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/datatable/internal/bus"
	"github.com/jask/datatable/internal/director"
)

// Keys a transaction cell turns into custom actions.
const (
	KeyToggleFlag = "toggle"
	KeyCycle      = "cycle-status"
)

var cellKeys = map[string]string{
	"t": KeyToggleFlag,
	"p": KeyCycle,
}

// TxCell draws a transaction on one line and, when Detailed, a second
// line of metadata. Keys pressed while it is focused are published as
// cell actions.
type TxCell struct {
	Date     string
	Desc     string
	Category string
	Amount   string
	Cents    int64
	Detailed bool
	Meta     string

	actions *bus.Bus[director.CellAction]
}

func newTxCell(actions *bus.Bus[director.CellAction]) *TxCell {
	return &TxCell{actions: actions}
}

const (
	dateWidth     = 6
	amountWidth   = 13
	categoryWidth = 18
)

func (c *TxCell) View(width int) string {
	descWidth := max(width-dateWidth-amountWidth-categoryWidth-3, 8)
	cat := catStyle
	category := c.Category
	if category == "" {
		category, cat = "uncategorized", uncatStyle
	}
	line := dateStyle.Width(dateWidth).Render(ansi.Truncate(c.Date, dateWidth, "")) + " " +
		descStyle.Width(descWidth).Render(ansi.Truncate(c.Desc, descWidth, "…")) + " " +
		cat.Width(categoryWidth).Render(ansi.Truncate(category, categoryWidth, "…")) + " " +
		amountStyle(c.Cents).Width(amountWidth).Align(lipgloss.Right).Render(ansi.Truncate(c.Amount, amountWidth, ""))
	if !c.Detailed {
		return line
	}
	meta := strings.Repeat(" ", dateWidth+1) + ansi.Truncate(c.Meta, max(width-dateWidth-1, 1), "…")
	return line + "\n" + metaStyle.Render(meta)
}

// HandleKey publishes the custom action bound to msg, if any.
func (c *TxCell) HandleKey(msg tea.KeyMsg) bool {
	action, ok := cellKeys[msg.String()]
	if !ok || c.actions == nil {
		return false
	}
	c.actions.Publish(director.CellAction{Cell: c, Key: action})
	return true
}

// TextCell is a label with an optional right-aligned value.
type TextCell struct {
	Label string
	Value string
	Style lipgloss.Style
}

func (c *TextCell) View(width int) string {
	if c.Value == "" {
		return c.Style.Render(c.Label)
	}
	label := labelStyle.Render(c.Label)
	gap := max(width-lipgloss.Width(label)-lipgloss.Width(c.Value), 1)
	return label + strings.Repeat(" ", gap) + valueStyle.Render(c.Value)
}
