// Package watch reports writes to a SQLite database made by any process.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultThrottle is used when Options.Throttle is zero.
const DefaultThrottle = 250 * time.Millisecond

// Event reports one or more writes coalesced within a throttle window.
type Event struct {
	// Files holds the base names that changed, in first-seen order.
	Files []string
	At    time.Time
}

// Options configures Watch. A nil Logger discards output.
type Options struct {
	Throttle time.Duration
	Logger   *log.Logger
}

// Watch streams change events for dbPath and its -wal and -journal files
// until ctx is cancelled. The channel is closed when ctx ends or the
// watcher fails. Events are dropped while the consumer is behind; the
// next event still fires.
func Watch(ctx context.Context, dbPath string, opts Options) (<-chan Event, error) {
	if dbPath == "" {
		return nil, errors.New("watch: database path required")
	}
	if opts.Throttle <= 0 {
		opts.Throttle = DefaultThrottle
	}
	logger := opts.logger()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", dbPath, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("watch: ensure dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch: add %s: %w", dir, err)
	}

	base := filepath.Base(abs)
	out := make(chan Event, 1)

	go func() {
		defer close(out)
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Printf("watch: close: %v", err)
			}
		}()

		var pending []string
		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Printf("watch: %v", err)
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(ev.Name)
				if !Relevant(base, name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !contains(pending, name) {
					pending = append(pending, name)
				}
				if timer == nil {
					timer = time.NewTimer(opts.Throttle)
					fire = timer.C
				}
			case at := <-fire:
				timer, fire = nil, nil
				select {
				case out <- Event{Files: pending, At: at}:
				default:
				}
				pending = nil
			}
		}
	}()
	return out, nil
}

// Relevant reports whether name is the database called base or one of its
// journal files.
func Relevant(base, name string) bool {
	if name == base {
		return true
	}
	suffix, ok := strings.CutPrefix(name, base)
	if !ok {
		return false
	}
	return suffix == "-wal" || suffix == "-journal"
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard, "", 0)
}
