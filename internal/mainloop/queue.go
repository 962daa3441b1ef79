// Package mainloop provides the queue that owns UI state. Work submitted
// from other goroutines waits until the owner drains it.
package mainloop

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// DrainMsg tells the program's Update to drain the queue.
type DrainMsg struct{}

// Queue is a FIFO of functions executed by the owning goroutine.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
	wake  func()

	depth atomic.Int32
}

func New() *Queue { return &Queue{} }

// SetWaker installs fn, called (without locks held) whenever work arrives
// on an empty queue. fn must not block.
func (q *Queue) SetWaker(fn func()) {
	q.mu.Lock()
	q.wake = fn
	q.mu.Unlock()
}

// Attach wakes p with a DrainMsg whenever work arrives.
func (q *Queue) Attach(p *tea.Program) {
	// Send blocks until the event loop reads it, and Async may run inside Update.
	q.SetWaker(func() { go p.Send(DrainMsg{}) })
}

// Async enqueues fn. It is safe to call from any goroutine.
func (q *Queue) Async(fn func()) {
	q.mu.Lock()
	wasEmpty := len(q.tasks) == 0
	q.tasks = append(q.tasks, fn)
	wake := q.wake
	q.mu.Unlock()

	if wasEmpty && wake != nil {
		wake()
	}
}

// Run executes fn immediately with the queue marked current.
func (q *Queue) Run(fn func()) {
	q.depth.Add(1)
	defer q.depth.Add(-1)
	fn()
}

// IsCurrent reports whether Run or Drain is in progress. The check is not
// per goroutine: while the owner drains, any goroutine sees true.
func (q *Queue) IsCurrent() bool { return q.depth.Load() > 0 }

// Drain runs queued work, including work queued while draining, and
// returns how many functions ran.
func (q *Queue) Drain() int {
	n := 0
	q.Run(func() {
		for {
			q.mu.Lock()
			tasks := q.tasks
			q.tasks = nil
			q.mu.Unlock()
			if len(tasks) == 0 {
				return
			}
			for _, fn := range tasks {
				fn()
				n++
			}
		}
	})
	return n
}

// Pending reports how many functions are waiting.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// DrainCmd returns a command that asks Update to drain when work is pending.
func (q *Queue) DrainCmd() tea.Cmd {
	if q.Pending() == 0 {
		return nil
	}
	return func() tea.Msg { return DrainMsg{} }
}
