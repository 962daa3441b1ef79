// Package commands defines the datatable command line.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jask/datatable/internal/config"
	"github.com/jask/datatable/internal/database"
	"github.com/jask/datatable/internal/database/repository"
	"github.com/jask/datatable/internal/service"
)

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DBPath     string
}

// New returns the root command. Run without a subcommand it opens the
// transaction list.
func New() *cobra.Command {
	g := &GlobalOptions{}
	cmd := &cobra.Command{
		Use:           "datatable",
		Short:         "Browse, filter and edit imported bank transactions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.ConfigPath, "config", "", "config file (default ~/.config/datatable/config.toml)")
	cmd.PersistentFlags().StringVar(&g.DBPath, "db", "", "sqlite database path (overrides database.path)")

	addUI(cmd, g)
	addImport(cmd, g)
	addReset(cmd, g)
	addSeed(cmd, g)
	addRules(cmd, g)
	return cmd
}

// loadConfig applies the global flags on top of file and environment
// settings.
func (g *GlobalOptions) loadConfig(extra map[string]any) (config.Config, error) {
	if g.ConfigPath != "" {
		if err := os.Setenv("DATATABLE_CONFIG", g.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}
	overrides := map[string]any{}
	if g.DBPath != "" {
		overrides["database.path"] = g.DBPath
	}
	for k, v := range extra {
		overrides[k] = v
	}
	return config.LoadWith(overrides)
}

// store is an open, migrated database with its repositories.
type store struct {
	db     *sql.DB
	events *repository.Events

	accounts     *repository.AccountRepo
	categories   *repository.CategoryRepo
	tags         *repository.TagRepo
	rules        *repository.MerchantRuleRepo
	transactions *repository.TransactionRepo
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.OpenMigrated(cfg.Database.Path, cfg.Database.Migrations)
	if err != nil {
		return nil, err
	}
	events := repository.NewEvents()
	if err := database.SeedDefaults(ctx, db, events); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	return &store{
		db:           db,
		events:       events,
		accounts:     repository.NewAccountRepo(db, events),
		categories:   repository.NewCategoryRepo(db, events),
		tags:         repository.NewTagRepo(db, events),
		rules:        repository.NewMerchantRuleRepo(db, events),
		transactions: repository.NewTransactionRepo(db, events),
	}, nil
}

func (s *store) Close() error { return s.db.Close() }

func (s *store) ingest() *service.IngestService {
	return &service.IngestService{
		Transactions: s.transactions,
		Accounts:     s.accounts,
		Categorizer: &service.CategorizerService{
			Transactions: s.transactions,
			Rules:        s.rules,
			Categories:   s.categories,
		},
	}
}
