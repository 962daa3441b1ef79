package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/datatable/internal/mainloop"
	"github.com/jask/datatable/internal/prefs"
	"github.com/jask/datatable/internal/service"
	"github.com/jask/datatable/internal/tui"
	"github.com/jask/datatable/internal/watch"
)

func addUI(root *cobra.Command, g *GlobalOptions) {
	var filter string
	root.Flags().StringVar(&filter, "filter", "", `initial filter, e.g. --filter="cat:groceries amt:<-50"`)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cfg, err := g.loadConfig(nil)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, closeLog, err := openLog(cfg.UI.LogPath)
		if err != nil {
			return err
		}
		defer closeLog()

		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		filters, err := prefs.Open(cfg.Prefs.Dir)
		if err != nil {
			logger.Printf("warn: saved filters disabled: %v", err)
			filters = nil
		}

		var events <-chan watch.Event
		if cfg.Watch.Enabled {
			events, err = watch.Watch(ctx, cfg.Database.Path, watch.Options{Throttle: cfg.Watch.Throttle, Logger: logger})
			if err != nil {
				logger.Printf("warn: not watching %s: %v", cfg.Database.Path, err)
			}
		}

		queue := mainloop.New()
		app, err := tui.New(ctx, tui.Options{
			Config: cfg,
			Repos: tui.Repos{
				Transactions: s.transactions,
				Tags:         s.tags,
				Events:       s.events,
			},
			Services: tui.Services{Maintenance: &service.MaintenanceService{DB: s.db, Events: s.events}},
			Prefs:    filters,
			Queue:    queue,
			Watch:    events,
			Filter:   filter,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		defer app.Close()

		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		queue.Attach(p)
		_, err = p.Run()
		return err
	}
}

// openLog sends log output to path so it does not draw over the UI.
func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(os.Stderr, "", log.LstdFlags), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return log.New(f, "", log.LstdFlags), func() { _ = f.Close() }, nil
}
