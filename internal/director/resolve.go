package director

import "fmt"

// NumberOfSections implements DataSource.
func (d *Director[T]) NumberOfSections() int { return d.index.SectionCount() }

// NumberOfRows implements DataSource. The data section reports the first
// group of the query, or 0 when unbound, empty or failed.
func (d *Director[T]) NumberOfRows(section int) int {
	a := d.index.ToInternal(IndexPath{Section: section})
	switch a.Region {
	case RegionData:
		if d.query == nil || d.lastErr != nil {
			return 0
		}
		groups := d.query.Groups()
		if len(groups) == 0 {
			return 0
		}
		return groups[0].Count
	default:
		s, ok := d.staticSection(a)
		if !ok {
			return 0
		}
		return len(s.Rows)
	}
}

// RowAt resolves the row descriptor at path. Data rows are rebuilt on every
// call from the query's current object.
func (d *Director[T]) RowAt(path IndexPath) Row {
	a := d.index.ToInternal(path)
	if a.Region == RegionData {
		return d.dataRow(a.Row)
	}
	s, ok := d.staticSection(a)
	if !ok {
		panic(fmt.Sprintf("director: no static section at %v", path))
	}
	return s.Rows[a.Row]
}

func (d *Director[T]) dataRow(row int) Row {
	if d.query == nil {
		panic(fmt.Sprintf("director: data row %d requested with no query bound", row))
	}
	obj := d.query.Object(IndexPath{Section: 0, Row: row})
	item, ok := obj.(T)
	if !ok {
		var want T
		panic(fmt.Sprintf("director: unexpected object %T at data row %d, want %T", obj, row, want))
	}
	return item.Row(d.rowType)(d.action(item))
}

func (d *Director[T]) staticSection(a Address) (Section, bool) {
	var list []Section
	switch a.Region {
	case RegionBefore:
		list = d.before
	case RegionAfter:
		list = d.after
	default:
		return d.data, true
	}
	if a.Index < 0 || a.Index >= len(list) {
		return Section{}, false
	}
	return list[a.Index], true
}

// section returns the chrome for a flat section; the data section returns
// the configured data chrome.
func (d *Director[T]) section(section int) Section {
	s, _ := d.staticSection(d.index.ToInternal(IndexPath{Section: section}))
	return s
}

// CellForRow implements DataSource.
func (d *Director[T]) CellForRow(path IndexPath) Cell {
	row := d.RowAt(path)
	d.register(row)

	var cell Cell
	if w := d.widget(); w != nil {
		cell = w.DequeueReusableCell(row.ReuseIdentifier(), path)
	}
	if cell == nil {
		cell = row.NewCell()
	}
	row.Configure(cell)
	if row.Has(ActionConfigure) {
		row.Invoke(ActionConfigure, ActionContext{Cell: cell, Path: path})
	}
	return cell
}

func (d *Director[T]) register(row Row) {
	if !d.autoRegister {
		return
	}
	id := row.ReuseIdentifier()
	if _, ok := d.registered[id]; ok {
		return
	}
	w := d.widget()
	if w == nil {
		return
	}
	w.Register(id, row.NewCell)
	d.registered[id] = struct{}{}
}

func (d *Director[T]) TitleForHeader(section int) string { return d.section(section).HeaderTitle }
func (d *Director[T]) TitleForFooter(section int) string { return d.section(section).FooterTitle }
func (d *Director[T]) HeaderView(section int) View       { return d.section(section).HeaderView }
func (d *Director[T]) FooterView(section int) View       { return d.section(section).FooterView }

func (d *Director[T]) HeaderHeight(section int) int {
	return d.section(section).headerHeight(d.width())
}

func (d *Director[T]) FooterHeight(section int) int {
	return d.section(section).footerHeight(d.width())
}

// SetDataSection replaces the data section chrome. Rows are ignored. The
// caller requests a reload.
func (d *Director[T]) SetDataSection(s Section) {
	s.Rows = nil
	d.data = s
}
