package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/validation"
)

func newValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <plan.json>",
		Short: "Check a plan document against the registered capabilities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read plan: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := observability.NewNopLogger()
			// Model-backed capability names need a backend; validate
			// against whatever can be registered.
			backend, _, _ := newBackend(cfg, logger)
			registry := buildRegistry(cfg, backend, logger)

			warnings, err := validation.ValidateDocument(data, registry.Names())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(warnings) == 0 {
				fmt.Fprintln(out, "plan is valid")
				return nil
			}
			for _, w := range warnings {
				msg, example := w.Hint()
				fmt.Fprintf(out, "%s\n  hint: %s\n", w.Error(), msg)
				if example != nil {
					b, _ := json.Marshal(example)
					fmt.Fprintf(out, "  example: %s\n", b)
				}
			}
			if strict {
				return fmt.Errorf("%d validation warning(s)", len(warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero on any warning")

	return cmd
}
