package director

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jask/datatable/internal/bus"
)

// ErrUnbound is returned by filter updates when no query is bound.
var ErrUnbound = errors.New("director: no query bound")

// State is the change coordinator state.
type State int

const (
	StateUnbound State = iota
	StateBound
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StateRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config configures a Director. Main and Action are required.
type Config[T Item] struct {
	Widget WidgetRef
	Query  Query
	Main   MainQueue

	// RowType is handed to Item.Row for every data row.
	RowType string
	// Action binds the closure passed to each data row's builder.
	Action func(item T) func()

	// Before and After are copied; later changes to the caller's slices
	// have no effect.
	Before []Section
	After  []Section
	// DataSection carries the data section's header and footer.
	DataSection Section

	// ScrollDelegate receives the delegate capabilities the director does
	// not implement itself.
	ScrollDelegate any
	// AutoRegisterCells registers each row's cell factory with the widget
	// the first time its reuse identifier is seen.
	AutoRegisterCells bool

	// Actions carries cell-raised custom actions.
	Actions *bus.Bus[CellAction]

	HeightStrategy      HeightStrategy
	UsePrototypeHeights bool

	Logger *log.Logger
}

// Director is the data source and delegate for a Widget. All methods must be
// called on the main queue.
type Director[T Item] struct {
	widget  WidgetRef
	main    MainQueue
	rowType string
	action  func(T) func()

	index    IndexMap
	before   []Section
	after    []Section
	data     Section
	sections []Section

	scroll       any
	autoRegister bool
	registered   map[string]struct{}
	heights      HeightStrategy
	measuring    map[string]Cell
	logger       *log.Logger
	unsubscribe  func()

	query      Query
	generation uint64
	state      State
	pending    func()
	lastErr    error
}

// New builds a director, installs it on the widget and binds the initial
// query. It panics when Action or Main is missing, and when called off the
// main queue with a non-nil Query.
func New[T Item](ctx context.Context, cfg Config[T]) *Director[T] {
	if cfg.Action == nil {
		panic("director: Config.Action is required")
	}
	if cfg.Main == nil {
		panic("director: Config.Main is required")
	}
	widget := cfg.Widget
	if widget == nil {
		widget = func() Widget { return nil }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	d := &Director[T]{
		widget:       widget,
		main:         cfg.Main,
		rowType:      cfg.RowType,
		action:       cfg.Action,
		before:       cloneSections(cfg.Before),
		after:        cloneSections(cfg.After),
		data:         cfg.DataSection,
		index:        NewIndexMap(len(cfg.Before), len(cfg.After)),
		scroll:       cfg.ScrollDelegate,
		autoRegister: cfg.AutoRegisterCells,
		registered:   make(map[string]struct{}),
		heights:      cfg.HeightStrategy,
		measuring:    make(map[string]Cell),
		logger:       logger,
	}
	if d.heights == nil && cfg.UsePrototypeHeights {
		d.heights = NewPrototypeHeights(d.width)
	}

	if w := d.widget(); w != nil {
		w.SetDataSource(d)
		w.SetDelegate(d)
	}
	if cfg.Actions != nil {
		d.unsubscribe = cfg.Actions.Subscribe(d.didReceiveAction)
	}
	if cfg.Query != nil {
		d.Bind(ctx, cfg.Query)
	}
	return d
}

// Close releases the action bus subscription and the query observer.
func (d *Director[T]) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	if d.query != nil {
		d.query.SetObserver(nil)
		d.query = nil
	}
	d.generation++
	d.pending = nil
	d.state = StateUnbound
}

// State returns the change coordinator state.
func (d *Director[T]) State() State { return d.state }

// Query returns the bound query, or nil.
func (d *Director[T]) Query() Query { return d.query }

// Err returns the error of the last query execution, if it failed.
func (d *Director[T]) Err() error { return d.lastErr }

// IndexMap returns the flat/internal address translation in use.
func (d *Director[T]) IndexMap() IndexMap { return d.index }

// Bind replaces the bound query. The previous query loses its observer
// before the new one gains it, so stale notifications never reach the
// widget. A nil query unbinds.
func (d *Director[T]) Bind(ctx context.Context, q Query) {
	d.assertMain("Bind")

	if d.query != nil {
		d.query.SetObserver(nil)
	}
	d.generation++
	d.query = q
	d.pending = nil
	d.lastErr = nil

	if q == nil {
		d.state = StateUnbound
		d.reloadWidget()
		return
	}
	q.SetObserver(&binding[T]{d: d, generation: d.generation})
	d.execute(ctx)
	d.state = StateBound
	d.reloadWidget()
}

// UpdateFilter changes the query filter and re-executes it. onComplete runs
// once, on the main queue, when the resulting change has been applied.
func (d *Director[T]) UpdateFilter(ctx context.Context, expr string, onComplete func()) error {
	d.assertMain("UpdateFilter")

	if d.query == nil {
		return ErrUnbound
	}
	if err := d.query.SetFilter(expr); err != nil {
		return fmt.Errorf("set filter: %w", err)
	}
	d.pending = onComplete
	d.state = StateRefreshing
	if !d.execute(ctx) {
		gen := d.generation
		d.main.Async(func() { d.contentChanged(gen) })
	}
	return nil
}

// Reload schedules a widget reload on the main queue.
func (d *Director[T]) Reload() {
	d.main.Async(d.reloadWidget)
}

func (d *Director[T]) execute(ctx context.Context) bool {
	if err := d.query.Perform(ctx); err != nil {
		d.lastErr = err
		d.logger.Printf("director: query failed: %v", err)
		return false
	}
	d.lastErr = nil
	if groups := d.query.Groups(); len(groups) > 1 {
		d.logger.Printf("director: query reported %d groups; only %q is displayed", len(groups), groups[0].Name)
	}
	return true
}

func (d *Director[T]) contentChanged(generation uint64) {
	if generation != d.generation {
		return
	}
	if done := d.pending; done != nil {
		d.pending = nil
		done()
	}
	d.reloadWidget()
	d.pending = nil
	if d.query != nil {
		d.state = StateBound
	}
}

func (d *Director[T]) reloadWidget() {
	if w := d.widget(); w != nil {
		w.ReloadData()
	}
}

func (d *Director[T]) width() int {
	if w := d.widget(); w != nil {
		return w.Width()
	}
	return 0
}

// assertMain catches calls from outside the main queue. MainQueue only knows
// whether some caller is inside it, not which goroutine, so a goroutine that
// calls in while the queue is draining passes unnoticed.
func (d *Director[T]) assertMain(op string) {
	if !d.main.IsCurrent() {
		panic("director: " + op + " called off the main queue")
	}
}

// ForwardingTarget implements Forwarder.
func (d *Director[T]) ForwardingTarget() any { return d.scroll }

// binding observes one query generation.
type binding[T Item] struct {
	d          *Director[T]
	generation uint64
}

// Granular changes are ignored; every change ends in a full reload.
func (b *binding[T]) WillChangeContent()             {}
func (b *binding[T]) DidChangeSection(SectionChange) {}
func (b *binding[T]) DidChangeObject(ObjectChange)   {}

func (b *binding[T]) DidChangeContent() {
	b.d.main.Async(func() { b.d.contentChanged(b.generation) })
}
