package commands

import (
	"github.com/rahul/autopilot/internal/llm"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/tools"
	"github.com/rahul/autopilot/pkg/config"
)

// newBackend builds the text backend for the default provider.
func newBackend(cfg *config.Config, logger *observability.Logger) (llm.Generator, string, error) {
	name, provider, err := cfg.GetDefaultProvider()
	if err != nil {
		return nil, "", err
	}
	client, err := llm.NewFromConfig(name, provider, logger)
	if err != nil {
		return nil, "", err
	}
	return client, name, nil
}

// buildRegistry registers the built-in capabilities. Model-backed
// capabilities are only registered when a backend is available.
func buildRegistry(cfg *config.Config, backend llm.Generator, logger *observability.Logger) *tools.Registry {
	registry := tools.NewRegistry()

	registry.Register(tools.NewShellTool(cfg.App.Workspace))
	registry.Register(tools.NewGitStatusTool(cfg.App.Workspace))
	registry.Register(tools.NewEchoTool())
	registry.Register(tools.NewFilesystemTool(cfg.App.Workspace))
	registry.Register(tools.NewScraperTool())

	if search, err := tools.NewSearchTool(5); err != nil {
		logger.Warnf("web search unavailable: %v", err)
	} else {
		registry.Register(search)
	}

	if backend != nil {
		registry.Register(tools.NewLLMTool(backend))
		registry.Register(tools.NewReflectorTool(backend))
		registry.Register(tools.NewErrorAnalyzerTool(backend))

		analyzer := tools.NewGoalAnalyzerTool(backend, registry)
		analyzer.Marker = cfg.Agent.ReasoningMarker
		registry.Register(analyzer)
	}
	return registry
}
