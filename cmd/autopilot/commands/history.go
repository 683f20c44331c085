package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/store"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show audited runs, or the audit trail of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Memory.Type != "sqlite" {
				return fmt.Errorf("history needs memory.type sqlite, got %q", cfg.Memory.Type)
			}

			audit, err := store.NewAuditStore(cfg.Memory.Path)
			if err != nil {
				return err
			}
			defer audit.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				records, err := audit.Entries(args[0])
				if err != nil {
					return err
				}
				for _, r := range records {
					fmt.Fprintf(out, "%s %s\n", observability.Label(r.Label), r.Content)
				}
				return nil
			}

			runs, err := audit.Runs(limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tENTRIES")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\n", r.RunID, r.StartedAt, r.Entries)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")

	return cmd
}
