package watch

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	require.True(t, Relevant("ledger.db", "ledger.db"))
	require.True(t, Relevant("ledger.db", "ledger.db-wal"))
	require.True(t, Relevant("ledger.db", "ledger.db-journal"))
	require.False(t, Relevant("ledger.db", "ledger.db-shm"))
	require.False(t, Relevant("ledger.db", "other.db"))
	require.False(t, Relevant("ledger.db", "ledger.db.bak"))
}

func TestWatchCoalescesWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")

	events, err := Watch(ctx, db, Options{Throttle: 200 * time.Millisecond, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(db, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(db+"-wal", []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(db, []byte("c"), 0o600))

	select {
	case ev := <-events:
		require.ElementsMatch(t, []string{"ledger.db", "ledger.db-wal"}, ev.Files)
	case <-time.After(3 * time.Second):
		t.Fatal("no watch event")
	}

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchRequiresPath(t *testing.T) {
	_, err := Watch(context.Background(), "", Options{})
	require.Error(t, err)
}

func TestNilLoggerDiscards(t *testing.T) {
	require.Equal(t, io.Discard, Options{}.logger().Writer())

	custom := log.New(os.Stderr, "w: ", 0)
	require.Same(t, custom, Options{Logger: custom}.logger())
}
