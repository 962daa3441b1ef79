package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishOrderAndUnsubscribe(t *testing.T) {
	t.Parallel()

	b := New[string]()
	var got []string
	unsubA := b.Subscribe(func(s string) { got = append(got, "a:"+s) })
	b.Subscribe(func(s string) { got = append(got, "b:"+s) })
	require.Equal(t, 2, b.Len())

	b.Publish("x")
	require.Equal(t, []string{"a:x", "b:x"}, got)

	unsubA()
	unsubA()
	require.Equal(t, 1, b.Len())

	got = nil
	b.Publish("y")
	require.Equal(t, []string{"b:y"}, got)
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	b := New[int]()
	calls := 0
	var unsub func()
	unsub = b.Subscribe(func(int) {
		calls++
		unsub()
	})
	b.Publish(1)
	b.Publish(2)
	require.Equal(t, 1, calls)
	require.Zero(t, b.Len())
}

func TestScopesAreIndependent(t *testing.T) {
	t.Parallel()

	a, c := New[int](), New[int]()
	hits := 0
	a.Subscribe(func(int) { hits++ })
	c.Publish(1)
	require.Zero(t, hits)
}

func TestConcurrentPublish(t *testing.T) {
	t.Parallel()

	b := New[int]()
	var mu sync.Mutex
	sum := 0
	b.Subscribe(func(n int) {
		mu.Lock()
		sum += n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Publish(n)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 1275, sum)
}
