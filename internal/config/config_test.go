package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATATABLE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "compact", c.Director.RowType)
	require.True(t, c.Director.AutoRegister)
	require.True(t, c.Watch.Enabled)
	require.Equal(t, 250*time.Millisecond, c.Watch.Throttle)
	require.Equal(t, "$", c.UI.CurrencySymbol)
	require.Equal(t, "datatable.db", filepath.Base(c.Database.Path))
}

func TestLoadFileEnvAndOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("DATATABLE_CONFIG", path)
	require.NoError(t, os.WriteFile(path, []byte(`
[director]
row_type = "detailed"
header_title = "Ledger"

[query]
filter = "cat:Food"

[watch]
throttle = "1s"
`), 0o600))
	t.Setenv("DATATABLE_UI_CURRENCY_SYMBOL", "€")

	c, err := LoadWith(map[string]any{"query.filter": "amt:>10"})
	require.NoError(t, err)
	require.Equal(t, "detailed", c.Director.RowType)
	require.Equal(t, "Ledger", c.Director.HeaderTitle)
	require.Equal(t, time.Second, c.Watch.Throttle)
	require.Equal(t, "€", c.UI.CurrencySymbol)
	require.Equal(t, "amt:>10", c.Query.Filter)
}

func TestLoadRejectsUnknownGrouping(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATATABLE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err := LoadWith(map[string]any{"query.group_by": "merchant"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "merchant")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("DATATABLE_CONFIG", path)

	c, err := Load()
	require.NoError(t, err)
	c.Director.RowType = "detailed"
	c.Query.GroupBy = "category"
	c.Watch.Throttle = 2 * time.Second
	require.NoError(t, Save(c))

	back, err := Load()
	require.NoError(t, err)
	require.Equal(t, c, back)
}

func TestLocationFallsBack(t *testing.T) {
	require.Equal(t, time.Local, UIConfig{}.Location())
	require.Equal(t, time.Local, UIConfig{Timezone: "Not/AZone"}.Location())
	require.Equal(t, "UTC", UIConfig{Timezone: "UTC"}.Location().String())
}
