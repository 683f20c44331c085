package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAMLAppliesDefaults(t *testing.T) {
	t.Setenv("AUTOPILOT_TEST_KEY", "sk-test")

	cfg, err := Parse([]byte(`
providers:
  openai:
    api_key: ${AUTOPILOT_TEST_KEY}
    model: gpt-4o-mini
    enabled: true
governance:
  deny_tools: [workspace]
`), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Providers["openai"].APIKey)
	assert.Equal(t, "autopilot", cfg.App.Name)
	assert.Equal(t, ".", cfg.App.Workspace)
	assert.Equal(t, "memory", cfg.Memory.Type)
	assert.Equal(t, 1, cfg.Agent.MaxReplans)
	assert.Equal(t, "</think>", cfg.Agent.ReasoningMarker)
	assert.Equal(t, []string{"workspace"}, cfg.Governance.DenyTools)
}

func TestParseExpandsOnlyProviderFields(t *testing.T) {
	t.Setenv("AUTOPILOT_TEST_VAR", "expanded")
	t.Setenv("AUTOPILOT_TEST_HOST", "localhost:11434")

	cfg, err := Parse([]byte(`{
		"providers": {"ollama": {"model": "qwen3:8b", "base_url": "http://${AUTOPILOT_TEST_HOST}", "enabled": true}},
		"governance": {"deny_patterns": ["echo \\$AUTOPILOT_TEST_VAR"]}
	}`), ".json")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.Providers["ollama"].BaseURL)
	assert.Equal(t, []string{`echo \$AUTOPILOT_TEST_VAR`}, cfg.Governance.DenyPatterns)
}

func TestParseJSON(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"app": {"workspace": "/tmp/work"},
		"providers": {"ollama": {"model": "qwen3:8b", "enabled": true}},
		"agent": {"max_replans": 3, "auto_confirm": true}
	}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agent.MaxReplans)
	assert.True(t, cfg.Agent.AutoConfirm)
}

func TestValidationFailures(t *testing.T) {
	tests := map[string]string{
		"sqlite without path":   `{"memory": {"type": "sqlite"}}`,
		"unknown memory type":   `{"memory": {"type": "redis"}}`,
		"bad log level":         `{"logging": {"level": "loud"}}`,
		"enabled without model": `{"providers": {"openai": {"enabled": true}}}`,
		"too many replans":      `{"agent": {"max_replans": 50}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), ".json")
			assert.Error(t, err)
		})
	}
}

func TestGetDefaultProvider(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{
		"openrouter": {Model: "b", Enabled: true},
		"ollama":     {Model: "a", Enabled: true},
		"openai":     {Model: "c"},
	}}
	name, p, err := cfg.GetDefaultProvider()
	require.NoError(t, err)
	assert.Equal(t, "ollama", name)
	assert.Equal(t, "a", p.Model)

	_, _, err = (&Config{}).GetDefaultProvider()
	assert.True(t, errors.Is(err, ErrNoProvider))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("memory:\n  type: sqlite\n  path: audit.db\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "audit.db", cfg.Memory.Path)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.NoError(t, Default().Validate())
}
