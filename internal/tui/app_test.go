package tui

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/datatable/internal/config"
	"github.com/jask/datatable/internal/database"
	"github.com/jask/datatable/internal/database/repository"
	"github.com/jask/datatable/internal/director"
	"github.com/jask/datatable/internal/mainloop"
	"github.com/jask/datatable/internal/prefs"
	"github.com/jask/datatable/internal/service"
)

// Static rows around the data section: three summary rows, two actions.
const staticRows = 5

type fixture struct {
	app   *App
	db    *sql.DB
	txs   *repository.TransactionRepo
	prefs *prefs.Store
	ctx   context.Context
}

func testConfig() config.Config {
	return config.Config{
		Director: config.DirectorConfig{RowType: "compact", HeaderTitle: "Transactions", AutoRegister: true},
		UI:       config.UIConfig{DateFormat: "02/01", CurrencySymbol: "$", Timezone: "UTC"},
	}
}

func newFixture(t *testing.T, cfg config.Config) *fixture {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	events := repository.NewEvents()
	txs := repository.NewTransactionRepo(db, events)
	seedTransactions(t, ctx, db, txs)

	store, err := prefs.Open(t.TempDir())
	require.NoError(t, err)

	a, err := New(ctx, Options{
		Config: cfg,
		Repos: Repos{
			Transactions: txs,
			Tags:         repository.NewTagRepo(db, events),
			Events:       events,
		},
		Services: Services{Maintenance: &service.MaintenanceService{DB: db, Events: events}},
		Prefs:    store,
		Queue:    mainloop.New(),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	f := &fixture{app: a, db: db, txs: txs, prefs: store, ctx: ctx}
	f.run(t, a.Init())
	return f
}

func seedTransactions(t *testing.T, ctx context.Context, db *sql.DB, txs *repository.TransactionRepo) {
	t.Helper()
	require.NoError(t, repository.NewAccountRepo(db, nil).Upsert(ctx, repository.Account{ID: "acct", Name: "Everyday"}))
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, desc := range []string{"SPOTIFY", "COFFEE SHOP", "WOOLWORTHS 1234"} {
		require.NoError(t, txs.Insert(ctx, repository.Transaction{
			ID:             desc,
			AccountID:      "acct",
			Date:           day.AddDate(0, 0, i),
			AmountCents:    int64(-1000 * (i + 1)),
			RawDescription: desc,
			Status:         "pending",
		}))
	}
}

// run executes cmd and feeds the resulting messages back into the app.
func (f *fixture) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			f.run(t, c)
		}
	default:
		f.send(t, msg)
	}
}

func (f *fixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := f.app.Update(msg)
	f.run(t, cmd)
}

func (f *fixture) keys(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+u":
			msg = tea.KeyMsg{Type: tea.KeyCtrlU}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		f.send(t, msg)
	}
}

// dataRows waits for the list to settle on want data rows.
func (f *fixture) dataRows(t *testing.T, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		f.send(t, mainloop.DrainMsg{})
		return f.app.table.RowCount()-staticRows == want
	}, 5*time.Second, 10*time.Millisecond)
}

// cursorToData moves the cursor to the first data row.
func (f *fixture) cursorToData(t *testing.T) {
	t.Helper()
	f.keys(t, "g", "down", "down", "down")
	p, ok := f.app.table.Cursor()
	require.True(t, ok)
	require.Equal(t, director.IndexPath{Section: 1, Row: 0}, p)
}

func TestListShowsSummaryDataAndActions(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)
	f.send(t, tea.WindowSizeMsg{Width: 100, Height: 20})

	require.Equal(t, 3, f.app.total)
	require.Equal(t, 3, f.app.uncategorized)

	view := f.app.View()
	require.Contains(t, view, "Summary")
	require.Contains(t, view, "Transactions")
	require.Contains(t, view, "Clear filter")
	require.Contains(t, view, "WOOLWORTHS 1234")
	require.Less(t, indexOf(view, "WOOLWORTHS"), indexOf(view, "SPOTIFY"), "newest first")
}

func TestFilterPromptAppliesAndRemembers(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)

	f.keys(t, "/", "woolworths", "enter")
	f.dataRows(t, 1)
	require.Equal(t, "woolworths", f.app.filterExpr)
	require.Equal(t, "1 matching", f.app.status)
	last, err := f.prefs.Last()
	require.NoError(t, err)
	require.Equal(t, "woolworths", last)

	f.keys(t, "s", "groceries", "enter")
	saved, err := f.prefs.Get("groceries")
	require.NoError(t, err)
	require.Equal(t, "woolworths", saved)

	f.keys(t, "/", "ctrl+u", "enter")
	f.dataRows(t, 3)
	require.Empty(t, f.app.filterExpr)

	f.keys(t, "1")
	f.dataRows(t, 1)
	require.Equal(t, "woolworths", f.app.filterExpr)

	f.keys(t, "/", "amt:", "enter")
	require.Contains(t, f.app.status, "error: ")
	require.Equal(t, "woolworths", f.app.filterExpr)

	f.keys(t, "/", "esc")
	require.Equal(t, modeBrowse, f.app.mode)
}

func TestLastFilterRestoredOnStart(t *testing.T) {
	cfg := testConfig()
	cfg.Query.Filter = "coffee"
	f := newFixture(t, cfg)
	f.dataRows(t, 1)
	require.Equal(t, "coffee", f.app.filterExpr)
}

func TestRowCommandsWriteThroughAndRefresh(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)
	f.cursorToData(t)

	f.keys(t, "t")
	require.Eventually(t, func() bool {
		tx, err := f.txs.Get(f.ctx, "WOOLWORTHS 1234")
		return err == nil && tx != nil && len(tx.Tags) == 1 && tx.Tags[0].Name == FlagTag
	}, 5*time.Second, 10*time.Millisecond)

	f.keys(t, "/", "tag:flagged", "enter")
	f.dataRows(t, 1)

	f.cursorToData(t)
	f.keys(t, "p")
	tx, err := f.txs.Get(f.ctx, "WOOLWORTHS 1234")
	require.NoError(t, err)
	require.Equal(t, "posted", tx.Status)

	f.keys(t, "d")
	f.dataRows(t, 0)
	tx, err = f.txs.Get(f.ctx, "WOOLWORTHS 1234")
	require.NoError(t, err)
	require.Nil(t, tx)
	require.Eventually(t, func() bool {
		f.send(t, mainloop.DrainMsg{})
		return f.app.total == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDeleteOnStaticRowIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)
	f.keys(t, "g", "d")
	require.Equal(t, "nothing to delete here", f.app.status)
}

func TestClickShowsTransaction(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)
	f.cursorToData(t)
	f.keys(t, "enter")
	require.Equal(t, "03/03  WOOLWORTHS 1234  -$30.00", f.app.status)
	_, selected := f.app.table.Selected()
	require.False(t, selected, "handled clicks deselect")
}

func TestResetRequiresConfirmation(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)

	f.keys(t, "R", "n")
	f.dataRows(t, 3)

	f.keys(t, "R", "y")
	f.dataRows(t, 0)
}

func TestDetailedRowsWithoutAutoRegistration(t *testing.T) {
	cfg := testConfig()
	cfg.Director.RowType = "detailed"
	cfg.Director.AutoRegister = false
	f := newFixture(t, cfg)
	f.dataRows(t, 3)
	f.send(t, tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Contains(t, f.app.View(), "Everyday · pending")
}

func TestExternalWritesWaitForMainQueue(t *testing.T) {
	f := newFixture(t, testConfig())
	f.dataRows(t, 3)

	// Another process shrinks the ledger; only the watcher notices.
	other := repository.NewTransactionRepo(f.db, nil)
	require.NoError(t, other.Delete(f.ctx, "WOOLWORTHS 1234"))
	require.NoError(t, other.Delete(f.ctx, "COFFEE SHOP"))
	f.app.query.Invalidate()
	require.Eventually(t, func() bool { return f.app.queue.Pending() > 0 }, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, 3, f.app.shown(), "refetched rows stay hidden until the queue drains")

	// Keys handled before the drain still address the rows on screen.
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("G")},
		{Type: tea.KeyRunes, Runes: []rune("k")},
		{Type: tea.KeyRunes, Runes: []rune("k")},
		{Type: tea.KeyEnter},
	} {
		require.NotPanics(t, func() { f.app.Update(msg) })
	}
	require.Equal(t, "01/03  SPOTIFY  -$10.00", f.app.status)

	f.dataRows(t, 1)
	require.Equal(t, 1, f.app.shown())
}

func TestNextStatus(t *testing.T) {
	require.Equal(t, "posted", nextStatus("pending"))
	require.Equal(t, "reconciled", nextStatus("posted"))
	require.Equal(t, "pending", nextStatus("reconciled"))
	require.Equal(t, "pending", nextStatus(""))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
