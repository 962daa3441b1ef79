package director

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type textCell struct {
	text string
}

func (c *textCell) View(int) string { return c.text }

type tallCell struct {
	lines int
}

func (c *tallCell) View(int) string { return strings.Repeat("x\n", c.lines-1) + "x" }

// textRow builds a static row with the given label.
func textRow(label string) *TableRow[*textCell] {
	return NewRow(func() *textCell { return &textCell{} }, func(c *textCell) { c.text = label })
}

type entry struct {
	name  string
	click bool
}

func (e entry) Row(rowType string) RowBuilder {
	return func(action func()) Row {
		r := NewRow(func() *textCell { return &textCell{} }, func(c *textCell) {
			c.text = rowType + ":" + e.name
		}).WithReuseIdentifier("entry")
		if e.click {
			r.OnDo(ActionClick, func(ActionContext) { action() })
		}
		return r
	}
}

type fakeQuery struct {
	mu       sync.Mutex
	all      []any
	visible  []any
	filter   string
	observer Observer
	err      error
	extra    []Group
	performs int
}

func newFakeQuery(names ...string) *fakeQuery {
	q := &fakeQuery{}
	for _, n := range names {
		q.all = append(q.all, entry{name: n})
	}
	return q
}

func (q *fakeQuery) SetFilter(expr string) error {
	if expr == "(" {
		return errors.New("unbalanced")
	}
	q.mu.Lock()
	q.filter = expr
	q.mu.Unlock()
	return nil
}

func (q *fakeQuery) Perform(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.performs++
	if q.err != nil {
		q.visible = nil
		return q.err
	}
	q.visible = q.visible[:0]
	for _, o := range q.all {
		if e, ok := o.(entry); ok && !strings.Contains(e.name, q.filter) {
			continue
		}
		q.visible = append(q.visible, o)
	}
	return nil
}

func (q *fakeQuery) Groups() []Group {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.visible) == 0 && len(q.extra) == 0 {
		return nil
	}
	return append([]Group{{Name: "all", Count: len(q.visible)}}, q.extra...)
}

func (q *fakeQuery) Object(p IndexPath) any {
	q.mu.Lock()
	defer q.mu.Unlock()
	if p.Section != 0 || p.Row < 0 || p.Row >= len(q.visible) {
		return nil
	}
	return q.visible[p.Row]
}

func (q *fakeQuery) SetObserver(o Observer) {
	q.mu.Lock()
	q.observer = o
	q.mu.Unlock()
}

func (q *fakeQuery) currentObserver() Observer {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.observer
}

// notify delivers a full change cycle from a separate goroutine and waits
// for it to finish.
func (q *fakeQuery) notify() {
	o := q.currentObserver()
	if o == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.WillChangeContent()
		o.DidChangeObject(ObjectChange{Type: ChangeUpdate})
		o.DidChangeContent()
	}()
	<-done
}

type fakeWidget struct {
	ds         DataSource
	delegate   Delegate
	width      int
	reloads    int
	log        *[]string
	factories  map[string]func() Cell
	registers  map[string]int
	onScreen   map[IndexPath]Cell
	deselected []IndexPath
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{
		width:     40,
		factories: make(map[string]func() Cell),
		registers: make(map[string]int),
		onScreen:  make(map[IndexPath]Cell),
	}
}

func (w *fakeWidget) SetDataSource(ds DataSource) { w.ds = ds }
func (w *fakeWidget) SetDelegate(d Delegate)      { w.delegate = d }
func (w *fakeWidget) Width() int                  { return w.width }

func (w *fakeWidget) ReloadData() {
	w.reloads++
	if w.log != nil {
		*w.log = append(*w.log, "reload")
	}
}

func (w *fakeWidget) Register(id string, f func() Cell) {
	w.factories[id] = f
	w.registers[id]++
}

func (w *fakeWidget) DequeueReusableCell(id string, _ IndexPath) Cell {
	if f, ok := w.factories[id]; ok {
		return f()
	}
	return nil
}

func (w *fakeWidget) CellForRow(p IndexPath) Cell { return w.onScreen[p] }

func (w *fakeWidget) IndexPathForCell(c Cell) (IndexPath, bool) {
	for p, v := range w.onScreen {
		if v == c {
			return p, true
		}
	}
	return IndexPath{}, false
}

func (w *fakeWidget) DeselectRow(p IndexPath) { w.deselected = append(w.deselected, p) }

// manualQueue is a MainQueue driven explicitly by tests.
type manualQueue struct {
	current bool
	tasks   []func()
}

func (m *manualQueue) Async(fn func()) { m.tasks = append(m.tasks, fn) }
func (m *manualQueue) IsCurrent() bool { return m.current }

func (m *manualQueue) run(fn func()) {
	prev := m.current
	m.current = true
	defer func() { m.current = prev }()
	fn()
}

func (m *manualQueue) drain() int {
	n := 0
	m.run(func() {
		for len(m.tasks) > 0 {
			fn := m.tasks[0]
			m.tasks = m.tasks[1:]
			fn()
			n++
		}
	})
	return n
}

func names(d *Director[entry], section int) []string {
	var out []string
	for r := 0; r < d.NumberOfRows(section); r++ {
		cell := d.CellForRow(IndexPath{Section: section, Row: r})
		out = append(out, cell.View(0))
	}
	return out
}

func mustPanic(f func()) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprint(r)
		}
	}()
	f()
	return ""
}
