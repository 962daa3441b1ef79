// Package tui is the root bubbletea model: a transaction list driven by a
// director over a live query, plus the filter prompt and status line.
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/datatable/internal/bus"
	"github.com/jask/datatable/internal/config"
	"github.com/jask/datatable/internal/database/repository"
	"github.com/jask/datatable/internal/director"
	"github.com/jask/datatable/internal/ledger"
	"github.com/jask/datatable/internal/livequery"
	"github.com/jask/datatable/internal/mainloop"
	"github.com/jask/datatable/internal/prefs"
	"github.com/jask/datatable/internal/service"
	"github.com/jask/datatable/internal/table"
	"github.com/jask/datatable/internal/watch"
)

type Repos struct {
	Transactions *repository.TransactionRepo
	Tags         *repository.TagRepo
	Events       *repository.Events
}

type Services struct {
	Maintenance *service.MaintenanceService
}

// Options configures New. Config, Repos.Transactions and Queue are
// required.
type Options struct {
	Config   config.Config
	Repos    Repos
	Services Services
	Prefs    *prefs.Store
	Queue    *mainloop.Queue
	// Watch delivers writes by other processes; nil disables reloading.
	Watch <-chan watch.Event
	// Filter, when set, wins over the configured and last used filters.
	Filter string
	Logger *log.Logger
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeFilter
	modeSaveName
	modeConfirmReset
)

// FlagTag is the tag toggled by the flag key.
const FlagTag = "flagged"

// App is the root model. All of its state is owned by the main queue.
type App struct {
	ctx    context.Context
	cfg    config.Config
	repos  Repos
	svc    Services
	prefs  *prefs.Store
	queue  *mainloop.Queue
	watch  <-chan watch.Event
	logger *log.Logger

	table   *table.Model
	query   *livequery.Controller[ledger.Transaction]
	dir     *director.Director[ledger.Transaction]
	env     *ledger.Env
	actions *bus.Bus[director.CellAction]
	unsub   func()

	input      textinput.Model
	mode       inputMode
	filterExpr string

	total         int
	uncategorized int
	offset        int
	status        string
	width, height int

	// cmds collects commands raised by row handlers during one Update.
	cmds []tea.Cmd
}

// New builds the list and runs the initial query.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Queue == nil || opts.Repos.Transactions == nil {
		return nil, fmt.Errorf("tui: queue and transaction repo are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cfg := opts.Config

	a := &App{
		ctx:     ctx,
		cfg:     cfg,
		repos:   opts.Repos,
		svc:     opts.Services,
		prefs:   opts.Prefs,
		queue:   opts.Queue,
		watch:   opts.Watch,
		logger:  logger,
		table:   table.New(80, 20),
		actions: bus.New[director.CellAction](),
		width:   80,
		height:  23,
	}
	a.env = &ledger.Env{
		Format: ledger.Format{
			DateFormat:     cfg.UI.DateFormat,
			CurrencySymbol: cfg.UI.CurrencySymbol,
			Location:       cfg.UI.Location(),
		},
		Actions:   a.actions,
		OnCommand: a.onCommand,
	}

	qopts, err := ledger.QueryOptions(opts.Repos.Transactions, a.env, cfg.Query.GroupBy, logger)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	qopts.Main = a.queue
	a.query = livequery.New(ctx, qopts)

	expr := a.initialFilter(opts.Filter)
	if err := a.query.SetFilter(expr); err != nil {
		logger.Printf("tui: ignoring filter %q: %v", expr, err)
		a.status = "bad filter: " + err.Error()
		expr = ""
	}
	a.filterExpr = expr

	if !cfg.Director.AutoRegister {
		ledger.RegisterCells(a.table, a.env)
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)
	a.input = ti

	a.queue.Run(func() {
		a.dir = director.New(ctx, director.Config[ledger.Transaction]{
			Widget:              director.WeakWidget(a.table),
			Query:               a.query,
			Main:                a.queue,
			RowType:             cfg.Director.RowType,
			Action:              a.rowAction,
			Before:              a.summarySections(),
			After:               a.actionSections(),
			DataSection:         a.dataSection(expr),
			ScrollDelegate:      a,
			AutoRegisterCells:   cfg.Director.AutoRegister,
			Actions:             a.actions,
			UsePrototypeHeights: cfg.Director.PrototypeHeights,
			Logger:              logger,
		})
	})

	if a.repos.Events != nil {
		a.unsub = a.repos.Events.Subscribe(a.storeChanged)
	}
	return a, nil
}

func (a *App) initialFilter(flag string) string {
	if flag != "" {
		return flag
	}
	if a.cfg.Query.Filter != "" {
		return a.cfg.Query.Filter
	}
	if a.prefs == nil {
		return ""
	}
	last, err := a.prefs.Last()
	if err != nil {
		a.logger.Printf("tui: read last filter: %v", err)
		return ""
	}
	return last
}

// Close stops the live query and releases subscriptions.
func (a *App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
	a.queue.Run(a.dir.Close)
	a.query.Close()
}

// storeChanged runs on whichever goroutine wrote to the store.
func (a *App) storeChanged(repository.Change) {
	a.query.Invalidate()
	a.queue.Async(func() { a.later(a.loadCounts()) })
}

// DidScroll implements table.ScrollObserver.
func (a *App) DidScroll(offset int) { a.offset = offset }

func (a *App) later(cmd tea.Cmd) {
	if cmd != nil {
		a.cmds = append(a.cmds, cmd)
	}
}

func (a *App) summarySections() []director.Section {
	return []director.Section{{
		HeaderTitle: "Summary",
		Rows: []director.Row{
			ledger.StatRow("Transactions", func() string { return strconv.Itoa(a.total) }),
			ledger.StatRow("Uncategorized", func() string { return strconv.Itoa(a.uncategorized) }),
			ledger.StatRow("Showing", func() string { return strconv.Itoa(a.shown()) }),
		},
	}}
}

func (a *App) actionSections() []director.Section {
	return []director.Section{{
		HeaderTitle: "Actions",
		Rows: []director.Row{
			ledger.ActionRow("Clear filter", func() { a.applyFilter("") }),
			ledger.ActionRow("Refresh", a.refresh),
		},
	}}
}

func (a *App) dataSection(expr string) director.Section {
	banner := ledger.Banner{Title: a.cfg.Director.HeaderTitle}
	if expr != "" {
		banner.Subtitle = "filter: " + expr
	}
	return director.Section{
		HeaderView:  banner,
		FooterTitle: a.cfg.Director.FooterTitle,
	}
}

func (a *App) shown() int {
	groups := a.query.Groups()
	if len(groups) == 0 {
		return 0
	}
	return groups[0].Count
}

func (a *App) rowAction(tx ledger.Transaction) func() {
	return func() {
		a.status = fmt.Sprintf("%s  %s  %s", a.env.Format.Date(tx.Date), tx.Description(), a.env.Format.Amount(tx.AmountCents))
	}
}

func (a *App) onCommand(tx ledger.Transaction, cmd string) {
	switch cmd {
	case ledger.CommandDelete:
		a.later(a.deleteCmd(tx))
	case ledger.KeyToggleFlag:
		a.later(a.toggleFlagCmd(tx))
	case ledger.KeyCycle:
		a.later(a.cycleStatusCmd(tx))
	default:
		a.logger.Printf("tui: unknown row command %q", cmd)
	}
}

// applyFilter installs expr and remembers it as the last used filter.
func (a *App) applyFilter(expr string) {
	expr = strings.TrimSpace(expr)
	err := a.dir.UpdateFilter(a.ctx, expr, func() {
		a.status = fmt.Sprintf("%d matching", a.shown())
	})
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.filterExpr = expr
	a.dir.SetDataSection(a.dataSection(expr))
	if a.prefs != nil {
		if err := a.prefs.SetLast(expr); err != nil {
			a.logger.Printf("tui: save last filter: %v", err)
		}
	}
}

func (a *App) applySaved(n int) {
	if a.prefs == nil {
		return
	}
	saved, err := a.prefs.List()
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	if n < 1 || n > len(saved) {
		a.status = fmt.Sprintf("no saved filter %d", n)
		return
	}
	a.applyFilter(saved[n-1].Expr)
}

func (a *App) saveFilter(name string) {
	if a.prefs == nil {
		a.status = "saved filters are not configured"
		return
	}
	if err := a.prefs.Save(name, a.filterExpr); err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.status = fmt.Sprintf("saved %q", strings.TrimSpace(name))
}

func (a *App) refresh() {
	a.query.Invalidate()
	a.later(a.loadCounts())
}

func (a *App) deleteAtCursor() {
	p, ok := a.table.Cursor()
	if !ok {
		return
	}
	if _, handled := a.dir.Invoke(director.ActionClickDelete, a.table.CellForRow(p), p, nil); !handled {
		a.status = "nothing to delete here"
	}
}
