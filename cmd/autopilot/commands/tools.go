package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rahul/autopilot/internal/observability"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := observability.NewNopLogger()
			backend, _, err := newBackend(cfg, logger)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "model-backed capabilities unavailable: %v\n", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINPUT\tTAGS")
			for _, spec := range buildRegistry(cfg, backend, logger).Specs() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Name, spec.InputHint, strings.Join(spec.Tags, ","))
			}
			return w.Flush()
		},
	}
}
