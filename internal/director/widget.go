package director

import "weak"

// AutomaticDimension asks the widget to size a row from its rendered cell.
const AutomaticDimension = -1

// EditStyle is the kind of edit committed by the widget.
type EditStyle int

const (
	EditNone EditStyle = iota
	EditDelete
	EditInsert
)

// DataSource answers the widget's structural questions.
type DataSource interface {
	NumberOfSections() int
	NumberOfRows(section int) int
	CellForRow(path IndexPath) Cell
	TitleForHeader(section int) string
	TitleForFooter(section int) string
}

// Measurer sizes a row for a widget without producing a displayable cell.
type Measurer interface {
	MeasureRow(path IndexPath, width int) int
}

// Delegate receives layout queries and interaction events from the widget.
type Delegate interface {
	HeaderView(section int) View
	FooterView(section int) View
	HeaderHeight(section int) int
	FooterHeight(section int) int
	HeightForRow(path IndexPath) int
	EstimatedHeightForRow(path IndexPath) int

	DidSelectRow(path IndexPath)
	DidDeselectRow(path IndexPath)
	WillDisplay(cell Cell, path IndexPath)
	ShouldHighlight(path IndexPath) bool
	// WillSelect returns the row to select instead, or false to veto.
	WillSelect(path IndexPath) (IndexPath, bool)

	CanEditRow(path IndexPath) bool
	CommitEdit(style EditStyle, path IndexPath)
}

// Forwarder hands capabilities a delegate does not implement to another
// object.
type Forwarder interface {
	ForwardingTarget() any
}

// Resolve finds the implementation of capability I for a delegate: the
// delegate itself first, then its forwarding target.
func Resolve[I any](delegate any) (I, bool) {
	if v, ok := delegate.(I); ok {
		return v, true
	}
	if f, ok := delegate.(Forwarder); ok {
		if v, ok := f.ForwardingTarget().(I); ok {
			return v, true
		}
	}
	var zero I
	return zero, false
}

// Widget is the list view driven by a Director.
type Widget interface {
	SetDataSource(ds DataSource)
	SetDelegate(d Delegate)
	ReloadData()
	Width() int

	Register(reuseID string, newCell func() Cell)
	DequeueReusableCell(reuseID string, path IndexPath) Cell
	// CellForRow returns the on-screen cell at path, or nil.
	CellForRow(path IndexPath) Cell
	IndexPathForCell(cell Cell) (IndexPath, bool)
	DeselectRow(path IndexPath)
}

// WidgetRef yields the widget, or nil once it is gone.
type WidgetRef func() Widget

// WeakWidget references w without keeping it alive.
func WeakWidget[T any, P interface {
	*T
	Widget
}](w P) WidgetRef {
	wp := weak.Make((*T)(w))
	return func() Widget {
		p := wp.Value()
		if p == nil {
			return nil
		}
		return P(p)
	}
}

// StrongWidget references w for the lifetime of the director.
func StrongWidget(w Widget) WidgetRef {
	return func() Widget { return w }
}

// MainQueue runs work on the goroutine that owns the widget.
type MainQueue interface {
	Async(fn func())
	IsCurrent() bool
}

// CellAction is published by a cell to ask its row to run a custom action.
type CellAction struct {
	Cell     Cell
	Key      string
	UserInfo any
}
