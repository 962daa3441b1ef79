package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/datatable/internal/testdata"
)

func addSeed(root *cobra.Command, g *GlobalOptions) {
	var n int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with sample transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(nil)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := testdata.Seed(cmd.Context(), testdata.Repos{
				Accounts:     s.accounts,
				Categories:   s.categories,
				Tags:         s.tags,
				Transactions: s.transactions,
			}, n, seed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d transactions\n", n)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 50, "number of transactions")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	root.AddCommand(cmd)
}
