package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRulesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules", "rules.toml")
	rules := []Rule{
		{Pattern: "woolworths", Category: "Groceries"},
		{Pattern: "uber eats", Category: "Restaurants"},
	}
	require.NoError(t, SaveRules(path, rules))

	back, err := LoadRules(path)
	require.NoError(t, err)
	require.Equal(t, rules, back)
}

func TestLoadRulesTrimsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[rule]]
pattern = "  spotify "
category = "Subscriptions"
`), 0o600))
	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Equal(t, []Rule{{Pattern: "spotify", Category: "Subscriptions"}}, rules)

	require.NoError(t, os.WriteFile(path, []byte("[[rule]]\npattern = \"x\"\n"), 0o600))
	_, err = LoadRules(path)
	require.ErrorContains(t, err, "rule 1 needs a pattern and a category")

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
