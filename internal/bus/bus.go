// Package bus is a small typed publish/subscribe channel. Every Bus is an
// independent scope; there is no process-wide instance.
package bus

import "sync"

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Bus delivers events of type T to its subscribers in subscription order.
type Bus[T any] struct {
	mu   sync.RWMutex
	next uint64
	subs []subscriber[T]
}

func New[T any]() *Bus[T] { return &Bus[T]{} }

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every subscriber synchronously on the caller's goroutine.
// Subscribers may unsubscribe while being called.
func (b *Bus[T]) Publish(ev T) {
	b.mu.RLock()
	subs := make([]subscriber[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Len reports the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
