// Package prefs persists user filter preferences.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

const (
	lastKey     = "last"
	savedPrefix = "saved-"
)

// ErrNotFound is returned for an unknown saved filter.
var ErrNotFound = errors.New("prefs: not found")

// Store keeps the last used filter and named saved filters, one file per
// key under a base directory.
type Store struct {
	d *diskv.Diskv
}

// Open returns a Store rooted at dir, creating it on first write.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("prefs: directory required")
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 64 * 1024,
	})}, nil
}

// Last returns the most recently used filter, or "".
func (s *Store) Last() (string, error) {
	v, err := s.d.Read(lastKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(v), nil
}

// SetLast records expr as the most recently used filter.
func (s *Store) SetLast(expr string) error {
	return s.d.Write(lastKey, []byte(expr))
}

func savedKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("prefs: filter name required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("prefs: invalid filter name %q", name)
	}
	return savedPrefix + name, nil
}

// Save stores expr under name, replacing any previous value.
func (s *Store) Save(name, expr string) error {
	key, err := savedKey(name)
	if err != nil {
		return err
	}
	return s.d.Write(key, []byte(expr))
}

// Get returns the filter saved under name.
func (s *Store) Get(name string) (string, error) {
	key, err := savedKey(name)
	if err != nil {
		return "", err
	}
	v, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", err
	}
	return string(v), nil
}

// Delete removes a saved filter. Removing a missing filter is a no-op.
func (s *Store) Delete(name string) error {
	key, err := savedKey(name)
	if err != nil {
		return err
	}
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// Saved is a named filter.
type Saved struct {
	Name string
	Expr string
}

// List returns the saved filters sorted by name.
func (s *Store) List() ([]Saved, error) {
	var out []Saved
	done := make(chan struct{})
	defer close(done)
	for key := range s.d.KeysPrefix(savedPrefix, done) {
		v, err := s.d.Read(key)
		if err != nil {
			return nil, err
		}
		out = append(out, Saved{Name: strings.TrimPrefix(key, savedPrefix), Expr: string(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
