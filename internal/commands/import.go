package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/datatable/internal/service"
)

// ImportOptions selects the CSV layout.
type ImportOptions struct {
	ANZ     bool
	Account string
}

func addImport(root *cobra.Command, g *GlobalOptions) {
	o := &ImportOptions{}
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Import transactions from a CSV export",
		Example: `
datatable import transactions.csv
datatable import --anz --account "ANZ Everyday" "ANZ 040226.csv"
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly one CSV path")
			}
			return nil
		},
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

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			var res service.IngestResult
			if o.ANZ {
				res, err = s.ingest().ImportANZSimple(cmd.Context(), f, o.Account, cfg.UI.Location())
			} else {
				res, err = s.ingest().ImportCSV(cmd.Context(), f, cfg.UI.Location())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d, skipped %d, categorized %d\n", res.Imported, res.Skipped, res.Categorized)
			for _, e := range res.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[0], e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&o.ANZ, "anz", false, "headerless ANZ export (date, amount, description)")
	cmd.Flags().StringVar(&o.Account, "account", "ANZ", "account name for --anz imports")
	root.AddCommand(cmd)
}
