package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/datatable/internal/config"
)

func addRules(root *cobra.Command, g *GlobalOptions) {
	var apply bool
	cmd := &cobra.Command{
		Use:   "rules <file>",
		Short: "Load merchant categorization rules from a TOML file",
		Example: `
datatable rules rules.toml --apply
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly one rules file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := config.LoadRules(args[0])
			if err != nil {
				return err
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

			categorizer := s.ingest().Categorizer
			for _, r := range rules {
				if err := categorizer.Learn(cmd.Context(), r.Pattern, r.Category); err != nil {
					return fmt.Errorf("rule %q: %w", r.Pattern, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "learned %d rules\n", len(rules))
			if !apply {
				return nil
			}
			n, err := categorizer.CategorizeAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "categorized %d transactions\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "categorize existing uncategorized transactions")
	root.AddCommand(cmd)
}
