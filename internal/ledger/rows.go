package ledger

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jask/datatable/internal/director"
)

// Row types understood by Transaction.Row.
const (
	RowCompact  = "compact"
	RowDetailed = "detailed"
)

// Reuse identifiers of the ledger cells.
const (
	ReuseCompact  = "tx-compact"
	ReuseDetailed = "tx-detailed"
	ReuseText     = "text"
)

// RegisterCells registers every ledger cell factory with w. Lists built
// without automatic registration call it before the first reload.
func RegisterCells(w director.Widget, env *Env) {
	w.Register(ReuseCompact, func() director.Cell { return newTxCell(env.actions()) })
	w.Register(ReuseDetailed, func() director.Cell { return newTxCell(env.actions()) })
	w.Register(ReuseText, func() director.Cell { return &TextCell{} })
}

// Row builds the descriptor for t. Clicking runs action; the toggle, cycle
// and click-delete actions go to the environment's command handler.
func (t Transaction) Row(rowType string) director.RowBuilder {
	return func(action func()) director.Row {
		detailed := rowType == RowDetailed
		f := t.env.format()
		r := director.NewRow(
			func() *TxCell { return newTxCell(t.env.actions()) },
			func(c *TxCell) {
				c.Date = f.Date(t.Date)
				c.Desc = t.Description()
				c.Category = t.CategoryName
				c.Amount = f.Amount(t.AmountCents)
				c.Cents = t.AmountCents
				c.Detailed = detailed
				c.Meta = t.meta()
			})
		if detailed {
			r.WithReuseIdentifier(ReuseDetailed).WithHeight(2)
		} else {
			r.WithReuseIdentifier(ReuseCompact).WithHeight(1)
		}
		r.OnDo(director.ActionClick, func(director.ActionContext) { action() })
		command := func(key string) func(director.ActionContext) {
			return func(director.ActionContext) { t.env.command(t, key) }
		}
		r.OnDo(director.ActionClickDelete, command(CommandDelete))
		r.OnDo(director.Custom(KeyToggleFlag), command(KeyToggleFlag))
		r.OnDo(director.Custom(KeyCycle), command(KeyCycle))
		return r
	}
}

func (t Transaction) meta() string {
	parts := []string{t.AccountName, t.Status}
	if tags := t.TagNames(); len(tags) > 0 {
		parts = append(parts, "#"+strings.Join(tags, " #"))
	}
	if t.Comment != nil && *t.Comment != "" {
		parts = append(parts, *t.Comment)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " · ")
}

// TextRow is a static label/value row.
func TextRow(label, value string) *director.TableRow[*TextCell] {
	return director.NewRow(
		func() *TextCell { return &TextCell{} },
		func(c *TextCell) {
			c.Label, c.Value, c.Style = label, value, labelStyle
		}).WithReuseIdentifier(ReuseText).WithHeight(1)
}

// StatRow is a label row whose value is read each time the cell is
// configured.
func StatRow(label string, value func() string) *director.TableRow[*TextCell] {
	return director.NewRow(
		func() *TextCell { return &TextCell{} },
		func(c *TextCell) {
			c.Label, c.Value, c.Style = label, value(), labelStyle
		}).WithReuseIdentifier(ReuseText).WithHeight(1)
}

// ActionRow is a static row that runs fn when clicked.
func ActionRow(label string, fn func()) *director.TableRow[*TextCell] {
	return director.NewRow(
		func() *TextCell { return &TextCell{} },
		func(c *TextCell) {
			c.Label, c.Value, c.Style = "› "+label, "", actionStyle
		}).
		WithReuseIdentifier(ReuseText).
		WithHeight(1).
		OnDo(director.ActionClick, func(director.ActionContext) { fn() })
}

// Banner is a section header or footer view.
type Banner struct {
	Title    string
	Subtitle string
}

func (b Banner) View(width int) string {
	w := max(width, 1)
	title := bannerStyle.Render(ansi.Truncate(b.Title, w, "…"))
	if b.Subtitle == "" {
		return title
	}
	return title + "\n" + bannerSubtle.Render(ansi.Truncate(b.Subtitle, w, "…"))
}
