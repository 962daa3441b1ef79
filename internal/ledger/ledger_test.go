package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/datatable/internal/bus"
	"github.com/jask/datatable/internal/database/repository"
	"github.com/jask/datatable/internal/director"
)

func ptr(s string) *string { return &s }

func sample() repository.Transaction {
	return repository.Transaction{
		ID:             "tx-1",
		Date:           time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		AmountCents:    -123450,
		RawDescription: "WOOLWORTHS 1234 SYDNEY",
		MerchantName:   ptr("Woolworths"),
		CategoryName:   "Groceries",
		AccountName:    "Everyday",
		Status:         "pending",
		Comment:        ptr("weekly shop"),
		Tags:           []repository.Tag{{ID: "t1", Name: "food"}, {ID: "t2", Name: "home"}},
	}
}

func TestFormat(t *testing.T) {
	f := Format{}
	require.Equal(t, "-$1,234.50", f.Amount(-123450))
	require.Equal(t, "$0.05", f.Amount(5))
	require.Equal(t, "$1,000,000.00", f.Amount(100000000))
	require.Equal(t, "€12.00", Format{CurrencySymbol: "€"}.Amount(1200))
	require.Equal(t, "14/03", f.Date(sample().Date))
	require.Equal(t, "2026-03-14", Format{DateFormat: "2006-01-02"}.Date(sample().Date))
}

func TestCompile(t *testing.T) {
	tx := Transaction{Transaction: sample()}
	cases := map[string]bool{
		"":                       true,
		"woolworths":             true,
		"cat:groceries":          true,
		"tag:food":               true,
		"amt:<-1000":             true,
		"type:credit":            false,
		"note:weekly":            true,
		"acc:savings":            false,
		"NOT tag:home":           false,
		"date:2026-03":           true,
		"cat:rent OR ~wolworths": true,
	}
	for expr, want := range cases {
		pred, err := Compile(expr)
		require.NoError(t, err, expr)
		if pred == nil {
			require.True(t, want, expr)
			continue
		}
		require.Equal(t, want, pred(tx), expr)
	}

	_, err := Compile("cat:")
	require.Error(t, err)
}

func TestRowConfiguresCell(t *testing.T) {
	tx := Wrap(&Env{}, []repository.Transaction{sample()})[0]

	clicked := 0
	row := tx.Row(RowCompact)(func() { clicked++ })
	require.Equal(t, "tx-compact", row.ReuseIdentifier())
	h, ok := row.DefaultHeight()
	require.True(t, ok)
	require.Equal(t, 1, h)

	cell := row.NewCell()
	row.Configure(cell)
	c := cell.(*TxCell)
	require.Equal(t, "14/03", c.Date)
	require.Equal(t, "Woolworths", c.Desc)
	require.Equal(t, "-$1,234.50", c.Amount)
	require.False(t, c.Detailed)
	require.Equal(t, 1, strings.Count(c.View(60), "\n")+1)

	row.Invoke(director.ActionClick, director.ActionContext{})
	require.Equal(t, 1, clicked)

	detailed := tx.Row(RowDetailed)(func() {})
	h, _ = detailed.DefaultHeight()
	require.Equal(t, 2, h)
	require.Equal(t, "tx-detailed", detailed.ReuseIdentifier())
	cell = detailed.NewCell()
	detailed.Configure(cell)
	view := cell.View(80)
	require.Equal(t, 2, strings.Count(view, "\n")+1)
	require.Contains(t, view, "Everyday · pending · #food #home · weekly shop")
}

func TestCommandsReachEnv(t *testing.T) {
	var got []string
	env := &Env{OnCommand: func(tx Transaction, cmd string) { got = append(got, tx.ID+" "+cmd) }}
	row := Wrap(env, []repository.Transaction{sample()})[0].Row(RowCompact)(func() {})

	for _, a := range []director.ActionType{
		director.ActionClickDelete, director.Custom(KeyToggleFlag), director.Custom(KeyCycle),
	} {
		require.True(t, row.Has(a), a.String())
		row.Invoke(a, director.ActionContext{})
	}
	require.Equal(t, []string{"tx-1 delete", "tx-1 toggle", "tx-1 cycle-status"}, got)
	require.False(t, row.Has(director.Custom("other")))
}

func TestCellKeysPublishActions(t *testing.T) {
	actions := bus.New[director.CellAction]()
	var got []director.CellAction
	actions.Subscribe(func(a director.CellAction) { got = append(got, a) })

	row := Wrap(&Env{Actions: actions}, []repository.Transaction{sample()})[0].Row(RowCompact)(func() {})
	cell := row.NewCell().(*TxCell)

	require.True(t, cell.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")}))
	require.False(t, cell.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}))
	require.Len(t, got, 1)
	require.Equal(t, KeyToggleFlag, got[0].Key)
	require.Same(t, cell, got[0].Cell)

	require.False(t, (&TxCell{}).HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")}))
}

func TestUncategorizedCell(t *testing.T) {
	c := &TxCell{Date: "01/01", Desc: "x", Amount: "$1.00"}
	require.Contains(t, c.View(60), "uncategorized")
}

func TestStaticRows(t *testing.T) {
	row := TextRow("Total", "42")
	cell := row.NewCell()
	row.Configure(cell)
	view := cell.View(20)
	require.True(t, strings.HasPrefix(view, "\x1b") || strings.HasPrefix(view, "Total"))
	require.Contains(t, view, "42")

	ran := false
	action := ActionRow("Import", func() { ran = true })
	require.True(t, action.Has(director.ActionClick))
	action.Invoke(director.ActionClick, director.ActionContext{})
	require.True(t, ran)

	require.Equal(t, 2, strings.Count(Banner{Title: "A", Subtitle: "b"}.View(10), "\n")+1)
	require.NotContains(t, Banner{Title: "A"}.View(10), "\n")
}

type lister struct {
	txs []repository.Transaction
	err error
}

func (l lister) List(context.Context, repository.TransactionFilters) ([]repository.Transaction, error) {
	return l.txs, l.err
}

func TestQueryOptions(t *testing.T) {
	older := sample()
	older.ID, older.Date, older.CategoryName = "tx-0", older.Date.AddDate(0, 0, -1), ""
	env := &Env{}

	opts, err := QueryOptions(lister{txs: []repository.Transaction{older, sample()}}, env, GroupCategory, nil)
	require.NoError(t, err)
	items, err := opts.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Same(t, env, items[0].env)
	require.True(t, opts.Less(items[1], items[0]))
	require.Equal(t, "Uncategorized", opts.GroupKey(items[0]))
	require.Equal(t, "Groceries", opts.GroupKey(items[1]))
	require.Equal(t, "tx-0", opts.Key(items[0]))
	require.True(t, opts.Equal(items[0], Transaction{Transaction: older}))

	opts, err = QueryOptions(lister{err: errors.New("boom")}, env, GroupNone, nil)
	require.NoError(t, err)
	require.Nil(t, opts.GroupKey)
	_, err = opts.Fetch(context.Background())
	require.EqualError(t, err, "boom")

	_, err = QueryOptions(lister{}, env, "merchant", nil)
	require.Error(t, err)
}

func TestStatRowReadsValueOnConfigure(t *testing.T) {
	n := 1
	row := StatRow("Total", func() string { return fmt.Sprint(n) })
	cell := row.NewCell().(*TextCell)
	row.Configure(cell)
	require.Equal(t, "1", cell.Value)
	n = 7
	row.Configure(cell)
	require.Equal(t, "7", cell.Value)
}
