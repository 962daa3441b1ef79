package prefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLastFilter(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	last, err := s.Last()
	require.NoError(t, err)
	require.Equal(t, "", last)

	require.NoError(t, s.SetLast("cat:Food"))
	last, err = s.Last()
	require.NoError(t, err)
	require.Equal(t, "cat:Food", last)
}

func TestSavedFilters(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("groceries", "cat:Groceries"))
	require.NoError(t, s.Save("big", "amt:<-100"))
	require.NoError(t, s.Save("big", "amt:<-500"))
	require.NoError(t, s.SetLast("ignored by List"))

	list, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []Saved{{Name: "big", Expr: "amt:<-500"}, {Name: "groceries", Expr: "cat:Groceries"}}, list)

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err := reopened.Get("groceries")
	require.NoError(t, err)
	require.Equal(t, "cat:Groceries", got)

	require.NoError(t, reopened.Delete("groceries"))
	require.NoError(t, reopened.Delete("groceries"))
	_, err = reopened.Get("groceries")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidNames(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Save("", "x"))
	require.Error(t, s.Save("a/b", "x"))
	_, err = s.Get("..")
	require.Error(t, err)

	_, err = Open(" ")
	require.Error(t, err)
}
