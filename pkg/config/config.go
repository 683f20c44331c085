package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrNoProvider is returned when no provider is enabled.
var ErrNoProvider = errors.New("no enabled provider found in config")

type Config struct {
	App        AppConfig                 `json:"app" yaml:"app"`
	Providers  map[string]ProviderConfig `json:"providers" yaml:"providers" validate:"dive"`
	Memory     MemoryConfig              `json:"memory" yaml:"memory"`
	Logging    LoggingConfig             `json:"logging" yaml:"logging"`
	Metrics    MetricsConfig             `json:"metrics" yaml:"metrics"`
	Telemetry  TelemetryConfig           `json:"telemetry" yaml:"telemetry"`
	Agent      AgentConfig               `json:"agent" yaml:"agent"`
	Governance GovernanceConfig          `json:"governance" yaml:"governance"`
}

type AppConfig struct {
	Name      string `json:"name" yaml:"name"`
	Workspace string `json:"workspace" yaml:"workspace" validate:"required"`
	Prompts   string `json:"prompts,omitempty" yaml:"prompts,omitempty"`
}

type ProviderConfig struct {
	APIKey      string  `json:"api_key" yaml:"api_key"`
	Model       string  `json:"model" yaml:"model" validate:"required_if=Enabled true"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"gte=0,lte=2"`
	Enabled     bool    `json:"enabled" yaml:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type" yaml:"type" validate:"oneof=memory sqlite"`
	Path string `json:"path" yaml:"path" validate:"required_if=Type sqlite"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=json console"`
	LLMLog string `json:"llm_log,omitempty" yaml:"llm_log,omitempty"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Addr      string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

type TelemetryConfig struct {
	Tracing bool `json:"tracing" yaml:"tracing"`
}

type AgentConfig struct {
	MaxReplans      int    `json:"max_replans" yaml:"max_replans" validate:"gte=0,lte=10"`
	AutoConfirm     bool   `json:"auto_confirm" yaml:"auto_confirm"`
	AnalyzeGoal     bool   `json:"analyze_goal" yaml:"analyze_goal"`
	ReasoningMarker string `json:"reasoning_marker,omitempty" yaml:"reasoning_marker,omitempty"`
}

type GovernanceConfig struct {
	DenyTools    []string `json:"deny_tools,omitempty" yaml:"deny_tools,omitempty"`
	DenyPatterns []string `json:"deny_patterns,omitempty" yaml:"deny_patterns,omitempty"`
}

// Default returns a config that runs against a local Ollama model.
func Default() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"ollama": {Model: "qwen3:8b", BaseURL: "http://localhost:11434", Enabled: true},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a JSON or YAML config file, chosen by extension.
// ${VAR} references are expanded from the environment before decoding.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes config data. ext selects the format (".yaml"/".yml" or JSON).
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.expandEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandEnv resolves ${VAR} references in provider credentials and
// endpoints. Other fields, regex patterns included, are taken literally.
func (c *Config) expandEnv() {
	for name, p := range c.Providers {
		p.APIKey = os.ExpandEnv(p.APIKey)
		p.BaseURL = os.ExpandEnv(p.BaseURL)
		c.Providers[name] = p
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "autopilot"
	}
	if c.App.Workspace == "" {
		c.App.Workspace = "."
	}
	if c.Memory.Type == "" {
		c.Memory.Type = "memory"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "autopilot"
	}
	if c.Agent.MaxReplans == 0 {
		c.Agent.MaxReplans = 1
	}
	if c.Agent.ReasoningMarker == "" {
		c.Agent.ReasoningMarker = "</think>"
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetDefaultProvider returns the first enabled provider in name order.
func (c *Config) GetDefaultProvider() (string, ProviderConfig, error) {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if p := c.Providers[name]; p.Enabled {
			return name, p, nil
		}
	}
	return "", ProviderConfig{}, ErrNoProvider
}
