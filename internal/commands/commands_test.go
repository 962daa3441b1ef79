package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/datatable/internal/config"
	"github.com/jask/datatable/internal/database"
	"github.com/jask/datatable/internal/database/repository"
)

func testEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DATATABLE_CONFIG", filepath.Join(home, "missing.toml"))
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	t.Setenv("DATATABLE_DATABASE_MIGRATIONS", migrations)
	return filepath.Join(home, "data", "test.db")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func count(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	total, _, err := repository.NewTransactionRepo(db, nil).Counts(context.Background())
	require.NoError(t, err)
	return total
}

func TestSeedImportReset(t *testing.T) {
	dbPath := testEnv(t)

	out, err := execute(t, "seed", "--db", dbPath, "-n", "5")
	require.NoError(t, err)
	require.Contains(t, out, "seeded 5 transactions")
	require.Equal(t, 5, count(t, dbPath))

	csvPath := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"2026-02-01,2026-02-02,WOOLWORTHS 123,-45.67,ext-1,Everyday\n"+
			"2026-02-03,,SALARY,+2500.00,,Salary\n"), 0o600))
	out, err = execute(t, "import", "--db", dbPath, csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2, skipped 0")
	require.Equal(t, 7, count(t, dbPath))

	out, err = execute(t, "import", "--db", dbPath, csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "imported 0, skipped 2")

	_, err = execute(t, "reset", "--db", dbPath)
	require.ErrorContains(t, err, "--yes")
	require.Equal(t, 7, count(t, dbPath))

	out, err = execute(t, "reset", "--db", dbPath, "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "database reset")
	require.Zero(t, count(t, dbPath))
}

func TestImportANZ(t *testing.T) {
	dbPath := testEnv(t)
	csvPath := filepath.Join(t.TempDir(), "anz.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(`3/02/2026,"-12.50","COFFEE SHOP"`+"\n"), 0o600))

	out, err := execute(t, "import", "--db", dbPath, "--anz", "--account", "Everyday", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "imported 1")
	require.Equal(t, 1, count(t, dbPath))
}

func TestImportRequiresPath(t *testing.T) {
	testEnv(t)
	_, err := execute(t, "import")
	require.ErrorContains(t, err, "requires exactly one CSV path")
}

func TestRulesLearnAndApply(t *testing.T) {
	dbPath := testEnv(t)
	csvPath := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("2026-02-01,,WOOLWORTHS 123,-45.67,,Everyday\n"), 0o600))
	_, err := execute(t, "import", "--db", dbPath, csvPath)
	require.NoError(t, err)

	rulesPath := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, config.SaveRules(rulesPath, []config.Rule{{Pattern: "woolworths", Category: "Groceries"}}))

	out, err := execute(t, "rules", "--db", dbPath, rulesPath, "--apply")
	require.NoError(t, err)
	require.Contains(t, out, "learned 1 rules")
	require.Contains(t, out, "categorized 1 transactions")

	require.NoError(t, config.SaveRules(rulesPath, []config.Rule{{Pattern: "x", Category: "Nope"}}))
	_, err = execute(t, "rules", "--db", dbPath, rulesPath)
	require.ErrorContains(t, err, `unknown category "Nope"`)
}
