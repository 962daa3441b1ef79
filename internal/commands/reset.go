package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/datatable/internal/service"
)

func addReset(root *cobra.Command, g *GlobalOptions) {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all transactions, accounts, categories and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes everything; pass --yes to confirm")
			}
			cfg, err := g.loadConfig(nil)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			m := &service.MaintenanceService{DB: s.db, Events: s.events}
			if err := m.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	root.AddCommand(cmd)
}
