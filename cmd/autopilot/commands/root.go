package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/rahul/autopilot/pkg/config"
)

var configPath string

// Execute runs the root command
func Execute(ctx context.Context, version, commit string) error {
	return newRootCommand(version, commit).ExecuteContext(ctx)
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autopilot",
		Short: "Plan, simulate and execute goals with a language model",
		Long: `autopilot asks a language model for a JSON plan that reaches a goal,
repairs and validates it, executes it step by step against a set of
capabilities, and replans from error analysis or reflection when a
critical step fails.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (JSON or YAML)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// loadConfig reads --config, else the first of config.yaml, config.yml
// and config.json in the working directory, else the built-in defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	for _, candidate := range []string{"config.yaml", "config.yml", "config.json"} {
		cfg, err := config.LoadConfig(candidate)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return config.Default(), nil
}
