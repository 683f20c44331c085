// Package llm adapts langchaingo models to the single-prompt text
// generation contract used by the planner and the LLM-backed capabilities.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a Generator backed by a langchaingo model.
type Client struct {
	Model  llms.Model
	Name   string
	opts   []llms.CallOption
	logger *observability.Logger
}

func NewClient(model llms.Model, name string, logger *observability.Logger, opts ...llms.CallOption) *Client {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Client{
		Model:  model,
		Name:   name,
		opts:   opts,
		logger: logger.Component("llm"),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.Model, prompt, c.opts...)
	c.logger.LogLLM(c.Name, prompt, out, err)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// NewFromConfig builds a client for a named provider.
func NewFromConfig(name string, p config.ProviderConfig, logger *observability.Logger) (*Client, error) {
	var (
		model llms.Model
		err   error
	)

	switch name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(p.Model)}
		if p.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(p.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("provider %s not yet implemented", name)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", name, err)
	}

	var callOpts []llms.CallOption
	if p.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(p.Temperature))
	}
	return NewClient(model, p.Model, logger, callOpts...), nil
}
