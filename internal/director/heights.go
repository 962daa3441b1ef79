package director

import "github.com/charmbracelet/lipgloss"

// HeightStrategy computes row heights the rows do not fix themselves.
type HeightStrategy interface {
	Height(row Row, path IndexPath) (int, bool)
	EstimatedHeight(row Row, path IndexPath) (int, bool)
}

// HeightForRow resolves: height action, fixed height, strategy, automatic.
func (d *Director[T]) HeightForRow(path IndexPath) int {
	row := d.RowAt(path)
	if row.Has(ActionHeight) {
		if h, ok := row.Invoke(ActionHeight, ActionContext{Path: path}).(int); ok {
			return h
		}
	}
	if h, ok := row.DefaultHeight(); ok {
		return h
	}
	if d.heights != nil {
		if h, ok := d.heights.Height(row, path); ok {
			return h
		}
	}
	return AutomaticDimension
}

// EstimatedHeightForRow follows the same chain with the row's estimate in
// place of its fixed height. It also registers the row's cell.
func (d *Director[T]) EstimatedHeightForRow(path IndexPath) int {
	row := d.RowAt(path)
	d.register(row)
	if row.Has(ActionHeight) {
		if h, ok := row.Invoke(ActionHeight, ActionContext{Path: path}).(int); ok {
			return h
		}
	}
	if h, ok := row.EstimatedHeight(); ok {
		return h
	}
	if d.heights != nil {
		if h, ok := d.heights.EstimatedHeight(row, path); ok {
			return h
		}
	}
	return AutomaticDimension
}

// MeasureRow implements Measurer. The row configures a private cell kept per
// reuse identifier; no actions run and the widget's reuse pool is untouched.
func (d *Director[T]) MeasureRow(path IndexPath, width int) int {
	row := d.RowAt(path)
	id := row.ReuseIdentifier()
	cell, ok := d.measuring[id]
	if !ok {
		cell = row.NewCell()
		d.measuring[id] = cell
	}
	row.Configure(cell)
	return lipgloss.Height(cell.View(width))
}

// PrototypeHeights measures rows by rendering a configured prototype cell.
// Estimates are cached per reuse identifier; exact heights are not.
type PrototypeHeights struct {
	width      func() int
	prototypes map[string]Cell
	estimates  map[string]int
}

// NewPrototypeHeights measures at the width returned by width.
func NewPrototypeHeights(width func() int) *PrototypeHeights {
	return &PrototypeHeights{
		width:      width,
		prototypes: make(map[string]Cell),
		estimates:  make(map[string]int),
	}
}

func (p *PrototypeHeights) Height(row Row, _ IndexPath) (int, bool) {
	id := row.ReuseIdentifier()
	cell, ok := p.prototypes[id]
	if !ok {
		cell = row.NewCell()
		p.prototypes[id] = cell
	}
	row.Configure(cell)
	return lipgloss.Height(cell.View(p.width())), true
}

func (p *PrototypeHeights) EstimatedHeight(row Row, path IndexPath) (int, bool) {
	id := row.ReuseIdentifier()
	if h, ok := p.estimates[id]; ok {
		return h, true
	}
	h, ok := p.Height(row, path)
	if ok {
		p.estimates[id] = h
	}
	return h, ok
}

// Invalidate drops cached estimates, e.g. after a width change.
func (p *PrototypeHeights) Invalidate() {
	clear(p.estimates)
}
