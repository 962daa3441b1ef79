// Package livequery keeps a filtered, sorted and grouped snapshot of a
// fetched result set and reports differences between snapshots to an
// observer. Controller satisfies director.Query.
package livequery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"sort"
	"sync"

	"github.com/jask/datatable/internal/director"
)

// ErrClosed is returned by Perform after Close.
var ErrClosed = errors.New("livequery: controller closed")

// Options configures a Controller. Fetch and Key are required.
type Options[T any] struct {
	// Fetch loads the unfiltered result set.
	Fetch func(ctx context.Context) ([]T, error)
	// Compile turns a filter expression into a predicate. When nil the
	// only accepted expression is "".
	Compile func(expr string) (func(T) bool, error)
	// Less orders the filtered objects. Fetch order is kept when nil.
	Less func(a, b T) bool
	// GroupKey splits the sorted objects into groups in order of first
	// appearance. When nil there is always exactly one unnamed group.
	GroupKey func(T) string
	// Key identifies an object across snapshots.
	Key func(T) string
	// Equal reports whether two objects with the same key render the
	// same. Defaults to reflect.DeepEqual.
	Equal func(a, b T) bool

	// Main, when set, owns the visible snapshot. Perform stages its result,
	// and the snapshot becomes visible on Main together with its change
	// notification, so Groups and Object never run ahead of what the
	// observer was told. Without Main, Perform publishes immediately.
	Main director.MainQueue

	Logger *log.Logger
}

type group[T any] struct {
	name  string
	items []T
}

type changeSet struct {
	sections []director.SectionChange
	objects  []director.ObjectChange
}

// delivery is one computed snapshot with its change set. seq orders
// snapshots so a staged one never replaces a newer one.
type delivery[T any] struct {
	seq    uint64
	groups []group[T]
	cs     changeSet
}

// Controller is a live query over T.
type Controller[T any] struct {
	opts   Options[T]
	logger *log.Logger

	performMu sync.Mutex

	mu sync.Mutex
	// groups is the visible snapshot; latest is the last one computed.
	groups      []group[T]
	latest      []group[T]
	seq         uint64
	committed   uint64
	pred        func(T) bool
	predChanged bool
	observer    director.Observer
	outbox      []delivery[T]
	closed      bool

	dirty   chan struct{}
	wake    chan struct{}
	closing chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New starts a controller. Its worker runs until ctx ends or Close is
// called. The controller holds no results until the first Perform.
func New[T any](ctx context.Context, opts Options[T]) *Controller[T] {
	if opts.Fetch == nil || opts.Key == nil {
		panic("livequery: Fetch and Key are required")
	}
	if opts.Equal == nil {
		opts.Equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Controller[T]{
		opts:    opts,
		logger:  logger,
		dirty:   make(chan struct{}, 1),
		wake:    make(chan struct{}, 1),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	if opts.GroupKey == nil {
		c.groups = []group[T]{{}}
		c.latest = c.groups
	}
	go c.loop(ctx)
	return c
}

// SetFilter compiles expr and installs it for the next Perform.
func (c *Controller[T]) SetFilter(expr string) error {
	var pred func(T) bool
	switch {
	case c.opts.Compile != nil:
		p, err := c.opts.Compile(expr)
		if err != nil {
			return fmt.Errorf("compile filter %q: %w", expr, err)
		}
		pred = p
	case expr != "":
		return fmt.Errorf("livequery: filtering not supported")
	}
	c.mu.Lock()
	c.pred = pred
	c.predChanged = true
	c.mu.Unlock()
	return nil
}

// Perform refetches and computes a new snapshot. It becomes visible
// immediately, or on Main when Main is set. A change notification is
// queued for the observer when the snapshot differs or the filter changed
// since the last Perform. On error the snapshot is emptied.
func (c *Controller[T]) Perform(ctx context.Context) error {
	c.performMu.Lock()
	defer c.performMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	pred := c.pred
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	items, err := c.opts.Fetch(ctx)
	var next []group[T]
	if err == nil {
		next = c.arrange(items, pred)
	} else if c.opts.GroupKey == nil {
		next = []group[T]{{}}
	}

	c.mu.Lock()
	cs := diff(c.latest, next, c.opts.Key, c.opts.Equal)
	c.latest = next
	c.seq++
	d := delivery[T]{seq: c.seq, groups: next, cs: cs}
	if c.opts.Main == nil {
		c.commit(d)
	}
	forced := c.predChanged
	c.predChanged = false
	if forced || len(cs.sections) > 0 || len(cs.objects) > 0 {
		c.outbox = append(c.outbox, d)
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

// commit publishes d unless a newer snapshot is already visible. c.mu must
// be held.
func (c *Controller[T]) commit(d delivery[T]) {
	if d.seq > c.committed {
		c.groups = d.groups
		c.committed = d.seq
	}
}

func (c *Controller[T]) arrange(items []T, pred func(T) bool) []group[T] {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if pred == nil || pred(it) {
			kept = append(kept, it)
		}
	}
	if c.opts.Less != nil {
		sort.SliceStable(kept, func(i, j int) bool { return c.opts.Less(kept[i], kept[j]) })
	}
	if c.opts.GroupKey == nil {
		return []group[T]{{items: kept}}
	}
	var out []group[T]
	pos := map[string]int{}
	for _, it := range kept {
		k := c.opts.GroupKey(it)
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, group[T]{name: k})
		}
		out[i].items = append(out[i].items, it)
	}
	return out
}

// Groups returns the group names and sizes of the visible snapshot.
func (c *Controller[T]) Groups() []director.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]director.Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = director.Group{Name: g.name, Count: len(g.items)}
	}
	return out
}

// Object returns the object at path, or nil when out of range.
func (c *Controller[T]) Object(path director.IndexPath) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path.Section < 0 || path.Section >= len(c.groups) {
		return nil
	}
	items := c.groups[path.Section].items
	if path.Row < 0 || path.Row >= len(items) {
		return nil
	}
	return items[path.Row]
}

// Objects returns a copy of the objects in group g.
func (c *Controller[T]) Objects(g int) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g < 0 || g >= len(c.groups) {
		return nil
	}
	return append([]T(nil), c.groups[g].items...)
}

// SetObserver installs o, replacing any previous observer. Notifications
// already queued go to whichever observer is installed at delivery time.
func (c *Controller[T]) SetObserver(o director.Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// Invalidate asks the worker to refetch. Requests coalesce.
func (c *Controller[T]) Invalidate() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// Close stops the worker and waits for it. Pending notifications are
// dropped.
func (c *Controller[T]) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.closing)
	})
	<-c.done
}

func (c *Controller[T]) loop(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closing:
			return
		case <-c.dirty:
			if err := c.Perform(ctx); err != nil && !errors.Is(err, ErrClosed) {
				c.logger.Printf("livequery: refresh failed: %v", err)
			}
		case <-c.wake:
			c.flush()
		}
	}
}

func (c *Controller[T]) flush() {
	for {
		c.mu.Lock()
		if len(c.outbox) == 0 || c.closed {
			c.mu.Unlock()
			return
		}
		d := c.outbox[0]
		c.outbox = c.outbox[1:]
		c.mu.Unlock()

		if c.opts.Main != nil {
			c.opts.Main.Async(func() { c.deliver(d) })
		} else {
			c.deliver(d)
		}
	}
}

// deliver makes d visible, if it is still the newest, and notifies the
// observer installed at this moment.
func (c *Controller[T]) deliver(d delivery[T]) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.commit(d)
	o := c.observer
	c.mu.Unlock()
	if o == nil {
		return
	}
	o.WillChangeContent()
	for _, s := range d.cs.sections {
		o.DidChangeSection(s)
	}
	for _, ch := range d.cs.objects {
		o.DidChangeObject(ch)
	}
	o.DidChangeContent()
}
