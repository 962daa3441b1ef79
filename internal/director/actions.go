package director

// Invoke runs the row's handler for action. The boolean is false when the
// row has no such handler. Handler panics are not recovered.
func (d *Director[T]) Invoke(action ActionType, cell Cell, path IndexPath, userInfo any) (any, bool) {
	row := d.RowAt(path)
	if !row.Has(action) {
		return nil, false
	}
	return row.Invoke(action, ActionContext{Cell: cell, Path: path, UserInfo: userInfo}), true
}

// HasAction reports whether the row at path handles action.
func (d *Director[T]) HasAction(action ActionType, path IndexPath) bool {
	return d.RowAt(path).Has(action)
}

func (d *Director[T]) didReceiveAction(ev CellAction) {
	w := d.widget()
	if w == nil || ev.Cell == nil {
		return
	}
	path, ok := w.IndexPathForCell(ev.Cell)
	if !ok {
		return
	}
	d.Invoke(Custom(ev.Key), ev.Cell, path, ev.UserInfo)
}

func (d *Director[T]) visibleCell(path IndexPath) Cell {
	if w := d.widget(); w != nil {
		return w.CellForRow(path)
	}
	return nil
}

// DidSelectRow runs click, deselecting the row when it is handled, and
// falls back to select otherwise.
func (d *Director[T]) DidSelectRow(path IndexPath) {
	cell := d.visibleCell(path)
	if _, ok := d.Invoke(ActionClick, cell, path, nil); ok {
		if w := d.widget(); w != nil {
			w.DeselectRow(path)
		}
		return
	}
	d.Invoke(ActionSelect, cell, path, nil)
}

func (d *Director[T]) DidDeselectRow(path IndexPath) {
	d.Invoke(ActionDeselect, d.visibleCell(path), path, nil)
}

func (d *Director[T]) WillDisplay(cell Cell, path IndexPath) {
	d.Invoke(ActionWillDisplay, cell, path, nil)
}

// ShouldHighlight defaults to true unless a handler returns a bool.
func (d *Director[T]) ShouldHighlight(path IndexPath) bool {
	res, _ := d.Invoke(ActionShouldHighlight, d.visibleCell(path), path, nil)
	if b, ok := res.(bool); ok {
		return b
	}
	return true
}

// WillSelect lets a will-select handler redirect or veto selection. A
// handler result that is not an IndexPath vetoes.
func (d *Director[T]) WillSelect(path IndexPath) (IndexPath, bool) {
	if !d.HasAction(ActionWillSelect, path) {
		return path, true
	}
	res, _ := d.Invoke(ActionWillSelect, d.visibleCell(path), path, nil)
	switch p := res.(type) {
	case IndexPath:
		return p, true
	case *IndexPath:
		if p != nil {
			return *p, true
		}
	}
	return IndexPath{}, false
}

// CanEditRow is always false: widget editing is disabled.
func (d *Director[T]) CanEditRow(IndexPath) bool { return false }

// CommitEdit routes a delete edit to click-delete.
func (d *Director[T]) CommitEdit(style EditStyle, path IndexPath) {
	if style != EditDelete {
		return
	}
	d.Invoke(ActionClickDelete, d.visibleCell(path), path, nil)
}
