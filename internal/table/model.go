// Package table is a sectioned, scrolling list view for bubbletea. It asks
// a director.DataSource for structure and cells and reports interaction to
// a director.Delegate.
//
// Cells are recycled through a reuse pool keyed by reuse identifier and
// must be comparable; pointer cells are.
package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/datatable/internal/director"
)

// ScrollObserver is notified when the first visible line changes. The
// table finds it through the delegate chain.
type ScrollObserver interface {
	DidScroll(offset int)
}

// KeyHandler is implemented by cells that react to keys while under the
// cursor. HandleKey reports whether the key was consumed.
type KeyHandler interface {
	HandleKey(msg tea.KeyMsg) bool
}

type entryKind int

const (
	entryHeader entryKind = iota
	entryRow
	entryFooter
)

type entry struct {
	kind    entryKind
	section int
	path    director.IndexPath
	top     int
	height  int
}

// Model is the list view. Use it through a pointer; the director keeps a
// weak reference to it.
type Model struct {
	KeyMap KeyMap
	Styles Styles

	ds director.DataSource
	dg director.Delegate

	width, height int

	factories map[string]func() director.Cell
	pool      map[string][]director.Cell
	reuseIDs  map[director.Cell]string

	visible map[director.IndexPath]director.Cell
	paths   map[director.Cell]director.IndexPath

	entries []entry
	rows    []int
	lines   int

	cursor   int
	offset   int
	selected *director.IndexPath
}

// New returns an empty table of the given size.
func New(width, height int) *Model {
	return &Model{
		KeyMap:    DefaultKeyMap(),
		Styles:    DefaultStyles(),
		width:     width,
		height:    height,
		factories: make(map[string]func() director.Cell),
		pool:      make(map[string][]director.Cell),
		reuseIDs:  make(map[director.Cell]string),
		visible:   make(map[director.IndexPath]director.Cell),
		paths:     make(map[director.Cell]director.IndexPath),
	}
}

func (m *Model) SetDataSource(ds director.DataSource) { m.ds = ds }
func (m *Model) SetDelegate(d director.Delegate)      { m.dg = d }
func (m *Model) Width() int                           { return m.width }
func (m *Model) Height() int                          { return m.height }

// SetSize resizes the viewport and lays out again.
func (m *Model) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.ReloadData()
}

func (m *Model) Register(reuseID string, newCell func() director.Cell) {
	m.factories[reuseID] = newCell
}

// DequeueReusableCell returns a recycled cell for reuseID or builds one with
// the registered factory. It panics when reuseID was never registered.
func (m *Model) DequeueReusableCell(reuseID string, _ director.IndexPath) director.Cell {
	if free := m.pool[reuseID]; len(free) > 0 {
		c := free[len(free)-1]
		m.pool[reuseID] = free[:len(free)-1]
		return c
	}
	f, ok := m.factories[reuseID]
	if !ok {
		panic(fmt.Sprintf("table: no cell registered for reuse identifier %q", reuseID))
	}
	c := f()
	m.reuseIDs[c] = reuseID
	return c
}

func (m *Model) CellForRow(path director.IndexPath) director.Cell {
	return m.visible[path]
}

func (m *Model) IndexPathForCell(cell director.Cell) (director.IndexPath, bool) {
	p, ok := m.paths[cell]
	return p, ok
}

// DeselectRow clears the selection at path without notifying the delegate.
func (m *Model) DeselectRow(path director.IndexPath) {
	if m.selected != nil && *m.selected == path {
		m.selected = nil
	}
}

// Selected returns the selected row, if any.
func (m *Model) Selected() (director.IndexPath, bool) {
	if m.selected == nil {
		return director.IndexPath{}, false
	}
	return *m.selected, true
}

// Cursor returns the row under the cursor.
func (m *Model) Cursor() (director.IndexPath, bool) {
	if len(m.rows) == 0 {
		return director.IndexPath{}, false
	}
	return m.entries[m.rows[m.cursor]].path, true
}

// Offset is the first visible line.
func (m *Model) Offset() int { return m.offset }

// RowCount is the number of rows across all sections.
func (m *Model) RowCount() int { return len(m.rows) }

// ReloadData recycles every visible cell and rebuilds the layout from the
// data source.
func (m *Model) ReloadData() {
	for p, c := range m.visible {
		m.recycle(p, c)
	}
	m.layout()
	m.refreshVisible()
}

func (m *Model) recycle(p director.IndexPath, c director.Cell) {
	delete(m.visible, p)
	delete(m.paths, c)
	if id, ok := m.reuseIDs[c]; ok {
		m.pool[id] = append(m.pool[id], c)
	}
}

func (m *Model) layout() {
	var prev director.IndexPath
	hadCursor := false
	if p, ok := m.Cursor(); ok {
		prev, hadCursor = p, true
	}

	m.entries = m.entries[:0]
	m.rows = m.rows[:0]
	m.lines = 0
	if m.ds == nil {
		m.cursor, m.offset = 0, 0
		return
	}
	add := func(e entry) {
		if e.height <= 0 {
			return
		}
		e.top = m.lines
		m.lines += e.height
		if e.kind == entryRow {
			m.rows = append(m.rows, len(m.entries))
		}
		m.entries = append(m.entries, e)
	}
	for s := 0; s < m.ds.NumberOfSections(); s++ {
		add(entry{kind: entryHeader, section: s, height: m.chromeHeight(s, true)})
		for r := 0; r < m.ds.NumberOfRows(s); r++ {
			p := director.IndexPath{Section: s, Row: r}
			add(entry{kind: entryRow, section: s, path: p, height: m.rowHeight(p)})
		}
		add(entry{kind: entryFooter, section: s, height: m.chromeHeight(s, false)})
	}

	m.cursor = 0
	if hadCursor {
		for i, idx := range m.rows {
			if m.entries[idx].path == prev {
				m.cursor = i
				break
			}
			if m.entries[idx].path.Section == prev.Section && m.entries[idx].path.Row <= prev.Row {
				m.cursor = i
			}
		}
	}
	if m.selected != nil && !m.hasRow(*m.selected) {
		m.selected = nil
	}
	m.clampOffset()
	m.ensureCursorVisible()
}

func (m *Model) hasRow(p director.IndexPath) bool {
	for _, idx := range m.rows {
		if m.entries[idx].path == p {
			return true
		}
	}
	return false
}

func (m *Model) chromeHeight(section int, header bool) int {
	var h int
	var title string
	var view director.View
	if m.dg != nil {
		if header {
			h, view = m.dg.HeaderHeight(section), m.dg.HeaderView(section)
		} else {
			h, view = m.dg.FooterHeight(section), m.dg.FooterView(section)
		}
	}
	if header {
		title = m.ds.TitleForHeader(section)
	} else {
		title = m.ds.TitleForFooter(section)
	}
	if h > 0 {
		return h
	}
	if view != nil {
		return lipgloss.Height(view.View(m.width))
	}
	if title != "" {
		return lipgloss.Height(title)
	}
	return 0
}

// rowHeight resolves a row's height: the delegate's height, its estimate,
// then the rendered cell. A data source that is a director.Measurer sizes
// the row itself; otherwise its CellForRow hooks run for off-screen rows.
func (m *Model) rowHeight(p director.IndexPath) int {
	if m.dg != nil {
		if h := m.dg.HeightForRow(p); h != director.AutomaticDimension && h > 0 {
			return h
		}
		if h := m.dg.EstimatedHeightForRow(p); h != director.AutomaticDimension && h > 0 {
			return h
		}
	}
	if ms, ok := m.ds.(director.Measurer); ok {
		return max(ms.MeasureRow(p, m.width), 1)
	}
	c := m.ds.CellForRow(p)
	h := lipgloss.Height(c.View(m.width))
	if id, ok := m.reuseIDs[c]; ok {
		m.pool[id] = append(m.pool[id], c)
	}
	return max(h, 1)
}

func (m *Model) clampOffset() {
	maxOffset := max(m.lines-m.height, 0)
	m.offset = min(max(m.offset, 0), maxOffset)
}

func (m *Model) ensureCursorVisible() {
	if len(m.rows) == 0 {
		return
	}
	e := m.entries[m.rows[m.cursor]]
	if e.top < m.offset {
		m.offset = e.top
		// Keep the section header in view when the cursor is on its first row.
		if e.path.Row == 0 && m.rows[m.cursor] > 0 {
			if h := m.entries[m.rows[m.cursor]-1]; h.kind == entryHeader {
				m.offset = h.top
			}
		}
	}
	if bottom := e.top + e.height; bottom > m.offset+m.height {
		m.offset = bottom - m.height
	}
	m.clampOffset()
}

// refreshVisible dequeues cells for rows entering the viewport and recycles
// cells of rows that left it. WillDisplay fires for newly shown cells.
func (m *Model) refreshVisible() {
	if m.ds == nil {
		return
	}
	var want []director.IndexPath
	keep := make(map[director.IndexPath]bool)
	for _, idx := range m.rows {
		e := m.entries[idx]
		if e.top+e.height <= m.offset || e.top >= m.offset+m.height {
			continue
		}
		keep[e.path] = true
		want = append(want, e.path)
	}
	for p, c := range m.visible {
		if !keep[p] {
			m.recycle(p, c)
		}
	}
	var shown []director.IndexPath
	for _, p := range want {
		if _, ok := m.visible[p]; ok {
			continue
		}
		c := m.ds.CellForRow(p)
		m.visible[p] = c
		m.paths[c] = p
		shown = append(shown, p)
	}
	if m.dg == nil {
		return
	}
	for _, p := range shown {
		if c, ok := m.visible[p]; ok {
			m.dg.WillDisplay(c, p)
		}
	}
}

func (m *Model) scrolled(before int) {
	m.refreshVisible()
	if m.offset == before {
		return
	}
	if o, ok := director.Resolve[ScrollObserver](m.dg); ok {
		o.DidScroll(m.offset)
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	before := m.offset
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.ensureCursorVisible()
	m.scrolled(before)
}

// SelectCursor runs the selection flow for the row under the cursor.
func (m *Model) SelectCursor() {
	p, ok := m.Cursor()
	if !ok || m.dg == nil {
		return
	}
	m.Select(p)
}

// Select runs the selection flow for p: highlight check, will-select
// redirection or veto, deselection of the previous row, then selection.
func (m *Model) Select(p director.IndexPath) {
	if m.dg == nil || !m.dg.ShouldHighlight(p) {
		return
	}
	target, ok := m.dg.WillSelect(p)
	if !ok {
		return
	}
	if m.selected != nil && *m.selected != target {
		prev := *m.selected
		m.selected = nil
		m.dg.DidDeselectRow(prev)
	}
	m.selected = &target
	m.dg.DidSelectRow(target)
}

func (m *Model) deselect() {
	if m.selected == nil || m.dg == nil {
		return
	}
	prev := *m.selected
	m.selected = nil
	m.dg.DidDeselectRow(prev)
}

// Update handles navigation and selection keys. Other keys go to the cell
// under the cursor when it is a KeyHandler.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	page := max(m.height-1, 1)
	switch {
	case key.Matches(km, m.KeyMap.Up):
		m.moveCursor(-1)
	case key.Matches(km, m.KeyMap.Down):
		m.moveCursor(1)
	case key.Matches(km, m.KeyMap.PageUp):
		m.moveCursor(-m.rowsWithin(page))
	case key.Matches(km, m.KeyMap.PageDown):
		m.moveCursor(m.rowsWithin(page))
	case key.Matches(km, m.KeyMap.Top):
		m.moveCursor(-len(m.rows))
	case key.Matches(km, m.KeyMap.Bottom):
		m.moveCursor(len(m.rows))
	case key.Matches(km, m.KeyMap.Select):
		m.SelectCursor()
	case key.Matches(km, m.KeyMap.Deselect):
		m.deselect()
	case key.Matches(km, m.KeyMap.Delete):
		if p, ok := m.Cursor(); ok && m.dg != nil && m.dg.CanEditRow(p) {
			m.dg.CommitEdit(director.EditDelete, p)
		}
	default:
		if p, ok := m.Cursor(); ok {
			if h, ok := m.visible[p].(KeyHandler); ok {
				h.HandleKey(km)
			}
		}
	}
	return nil
}

// rowsWithin counts rows below the cursor that fit in n lines, at least 1.
func (m *Model) rowsWithin(n int) int {
	if len(m.rows) == 0 {
		return 0
	}
	count, used := 0, 0
	for i := m.cursor; i < len(m.rows); i++ {
		used += m.entries[m.rows[i]].height
		if used > n {
			break
		}
		count++
	}
	return max(count, 1)
}

// View renders the viewport.
func (m *Model) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}
	out := make([]string, 0, m.height)
	var cursorPath director.IndexPath
	hasCursor := false
	if p, ok := m.Cursor(); ok {
		cursorPath, hasCursor = p, true
	}
	for _, e := range m.entries {
		if e.top+e.height <= m.offset {
			continue
		}
		if e.top >= m.offset+m.height {
			break
		}
		block := fit(m.render(e, hasCursor && e.kind == entryRow && e.path == cursorPath), e.height, m.width)
		for i, line := range block {
			if y := e.top + i; y >= m.offset && y < m.offset+m.height {
				out = append(out, line)
			}
		}
	}
	for len(out) < m.height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func (m *Model) render(e entry, cursor bool) string {
	switch e.kind {
	case entryHeader, entryFooter:
		var view director.View
		var title string
		style := m.Styles.Header
		if e.kind == entryHeader {
			if m.dg != nil {
				view = m.dg.HeaderView(e.section)
			}
			title = m.ds.TitleForHeader(e.section)
		} else {
			if m.dg != nil {
				view = m.dg.FooterView(e.section)
			}
			title = m.ds.TitleForFooter(e.section)
			style = m.Styles.Footer
		}
		if view != nil {
			return view.View(m.width)
		}
		return style.Render(title)
	default:
		c, ok := m.visible[e.path]
		if !ok {
			return ""
		}
		s := strings.Join(fit(c.View(m.width), e.height, m.width), "\n")
		selected := m.selected != nil && *m.selected == e.path
		switch {
		case selected:
			return m.Styles.Selected.Width(m.width).Render(s)
		case cursor:
			return m.Styles.Cursor.Width(m.width).Render(s)
		}
		return s
	}
}

// fit pads or cuts s to exactly h lines no wider than w.
func fit(s string, h, w int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, w, "")
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return lines
}
