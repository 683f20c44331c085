package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rahul/autopilot/internal/agent"
	"github.com/rahul/autopilot/internal/gateway"
	"github.com/rahul/autopilot/internal/governance"
	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/planner"
	"github.com/rahul/autopilot/internal/store"
)

var errGoalNotCompleted = errors.New("goal not completed")

func newRunCommand() *cobra.Command {
	var (
		yes         bool
		maxReplans  int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run <goal>",
		Short: "Plan and execute a goal",
		Example: `  # Ask before every capability invocation
  autopilot run "commit my staged changes with a sensible message"

  # Run unattended with up to three follow-up plans
  autopilot run --yes --max-replans 3 "run the tests and fix formatting"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if yes {
				cfg.Agent.AutoConfirm = true
			}
			if cmd.Flags().Changed("max-replans") {
				cfg.Agent.MaxReplans = maxReplans
			}
			if metricsAddr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Addr = metricsAddr
			}

			runID := uuid.NewString()
			logger := observability.NewLogger(os.Stderr, observability.LogConfig{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				LLMLog: cfg.Logging.LLMLog,
			}).WithRunID(runID)

			if cfg.Telemetry.Tracing {
				shutdown, err := observability.InitTracing(os.Stderr)
				if err != nil {
					return fmt.Errorf("init tracing: %w", err)
				}
				defer func() {
					if err := shutdownTracing(ctx, shutdown); err != nil {
						logger.Warnf("tracing shutdown: %v", err)
					}
				}()
			}

			var metrics *observability.Metrics
			if cfg.Metrics.Enabled {
				metrics = observability.NewMetrics(cfg.Metrics.Namespace)
				if cfg.Metrics.Addr != "" {
					go func() {
						if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
							logger.Errorf("metrics server: %v", err)
						}
					}()
				}
			}

			backend, provider, err := newBackend(cfg, logger)
			if err != nil {
				return err
			}
			logger.Infof("using provider %s", provider)
			registry := buildRegistry(cfg, backend, logger)

			var auditLog memory.Log = memory.NewInMemoryLog()
			if cfg.Memory.Type == "sqlite" {
				audit, err := store.NewAuditStore(cfg.Memory.Path)
				if err != nil {
					return err
				}
				defer audit.Close()
				auditLog = memory.NewMirrored(runID, audit, func(err error) {
					logger.Warnf("audit store: %v", err)
				})
			}

			console := gateway.NewConsole(os.Stdin, os.Stdout)
			var confirmer governance.Confirmer = console
			if cfg.Agent.AutoConfirm {
				confirmer = governance.AutoConfirm{}
			}
			policy, err := governance.FromConfig(cfg.Governance)
			if err != nil {
				return err
			}
			gate := governance.NewGate(policy, confirmer, logger)
			gate.Audit = auditLog

			opts := planner.Options{
				Marker:      cfg.Agent.ReasoningMarker,
				Prompts:     planner.NewPromptManager(cfg.App.Prompts),
				AnalyzeGoal: cfg.Agent.AnalyzeGoal,
				Logger:      logger,
				Metrics:     metrics,
			}
			a := agent.New(
				registry,
				planner.New(backend, registry, opts),
				planner.NewReplanner(backend, registry, opts),
				agent.NewEngine(registry, gate, logger, metrics),
				cfg.Agent.MaxReplans,
			)
			a.Logger = logger
			a.Metrics = metrics

			if gateway.IsInteractive(os.Stdout) {
				observability.PrintBanner(os.Stdout)
			}

			report := a.Run(ctx, auditLog, goal)
			if err := console.Send(gateway.RenderReport(report, auditLog)); err != nil {
				return err
			}
			if !report.Success() {
				return errGoalNotCompleted
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm every step without asking")
	cmd.Flags().IntVar(&maxReplans, "max-replans", 1, "maximum number of follow-up plans")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	return cmd
}

// shutdownTracing flushes pending spans. ctx is already cancelled after an
// interrupt, so the flush gets its own deadline.
func shutdownTracing(ctx context.Context, shutdown func(context.Context) error) error {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return shutdown(flushCtx)
}
