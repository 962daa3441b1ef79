package director

import "fmt"

// View renders itself at a given width. Cells, header views and footer
// views are all views.
type View interface {
	View(width int) string
}

// Cell is a reusable row view owned by the widget's reuse pool.
type Cell interface {
	View
}

type actionKind int

const (
	kindSelect actionKind = iota + 1
	kindDeselect
	kindClick
	kindClickDelete
	kindConfigure
	kindWillDisplay
	kindShouldHighlight
	kindWillSelect
	kindHeight
	kindCustom
)

// ActionType names a row action. The set is closed apart from Custom keys.
type ActionType struct {
	kind actionKind
	key  string
}

var (
	ActionSelect          = ActionType{kind: kindSelect}
	ActionDeselect        = ActionType{kind: kindDeselect}
	ActionClick           = ActionType{kind: kindClick}
	ActionClickDelete     = ActionType{kind: kindClickDelete}
	ActionConfigure       = ActionType{kind: kindConfigure}
	ActionWillDisplay     = ActionType{kind: kindWillDisplay}
	ActionShouldHighlight = ActionType{kind: kindShouldHighlight}
	ActionWillSelect      = ActionType{kind: kindWillSelect}
	ActionHeight          = ActionType{kind: kindHeight}
)

// Custom returns the action raised by a cell through the action bus.
func Custom(key string) ActionType { return ActionType{kind: kindCustom, key: key} }

// Key returns the custom key, or "" for built-in actions.
func (a ActionType) Key() string { return a.key }

func (a ActionType) String() string {
	switch a.kind {
	case kindSelect:
		return "select"
	case kindDeselect:
		return "deselect"
	case kindClick:
		return "click"
	case kindClickDelete:
		return "click-delete"
	case kindConfigure:
		return "configure"
	case kindWillDisplay:
		return "will-display"
	case kindShouldHighlight:
		return "should-highlight"
	case kindWillSelect:
		return "will-select"
	case kindHeight:
		return "height"
	case kindCustom:
		return "custom(" + a.key + ")"
	default:
		return "unknown"
	}
}

// ActionContext is passed to row handlers. Cell may be nil when the row is
// not on screen (height queries, programmatic invocations).
type ActionContext struct {
	Cell     Cell
	Path     IndexPath
	UserInfo any
}

// Row describes one visible row.
type Row interface {
	ReuseIdentifier() string
	CellType() string
	NewCell() Cell
	DefaultHeight() (int, bool)
	EstimatedHeight() (int, bool)
	Configure(cell Cell)
	Has(action ActionType) bool
	Invoke(action ActionType, ctx ActionContext) any
}

// RowBuilder binds an item's row to an action closure.
type RowBuilder func(action func()) Row

// Item is implemented by everything the live query can return.
type Item interface {
	Row(rowType string) RowBuilder
}

// TableRow is the stock Row implementation for a concrete cell type C.
type TableRow[C Cell] struct {
	reuseID   string
	newCell   func() C
	configure func(C)
	height    *int
	estimated *int
	handlers  map[ActionType]func(ActionContext) any
}

// NewRow returns a row that builds cells with newCell and fills them with
// configure. The reuse identifier defaults to the cell type.
func NewRow[C Cell](newCell func() C, configure func(C)) *TableRow[C] {
	return &TableRow[C]{
		newCell:   newCell,
		configure: configure,
		handlers:  make(map[ActionType]func(ActionContext) any),
	}
}

// WithReuseIdentifier overrides the reuse identifier.
func (r *TableRow[C]) WithReuseIdentifier(id string) *TableRow[C] {
	r.reuseID = id
	return r
}

func (r *TableRow[C]) WithHeight(h int) *TableRow[C] {
	r.height = &h
	return r
}

func (r *TableRow[C]) WithEstimatedHeight(h int) *TableRow[C] {
	r.estimated = &h
	return r
}

// On registers handler for action, replacing any previous one.
func (r *TableRow[C]) On(action ActionType, handler func(ActionContext) any) *TableRow[C] {
	r.handlers[action] = handler
	return r
}

// OnDo registers a handler without a result.
func (r *TableRow[C]) OnDo(action ActionType, handler func(ActionContext)) *TableRow[C] {
	return r.On(action, func(ctx ActionContext) any {
		handler(ctx)
		return nil
	})
}

func (r *TableRow[C]) ReuseIdentifier() string {
	if r.reuseID != "" {
		return r.reuseID
	}
	return r.CellType()
}

func (r *TableRow[C]) CellType() string {
	var zero C
	return fmt.Sprintf("%T", zero)
}

func (r *TableRow[C]) NewCell() Cell { return r.newCell() }

func (r *TableRow[C]) DefaultHeight() (int, bool) {
	if r.height == nil {
		return 0, false
	}
	return *r.height, true
}

func (r *TableRow[C]) EstimatedHeight() (int, bool) {
	if r.estimated == nil {
		return 0, false
	}
	return *r.estimated, true
}

func (r *TableRow[C]) Configure(cell Cell) {
	c, ok := cell.(C)
	if !ok {
		panic(fmt.Sprintf("director: row %q cannot configure cell of type %T", r.ReuseIdentifier(), cell))
	}
	if r.configure != nil {
		r.configure(c)
	}
}

func (r *TableRow[C]) Has(action ActionType) bool {
	_, ok := r.handlers[action]
	return ok
}

func (r *TableRow[C]) Invoke(action ActionType, ctx ActionContext) any {
	h, ok := r.handlers[action]
	if !ok {
		return nil
	}
	return h(ctx)
}
