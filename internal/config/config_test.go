package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 100, cfg.Agent.MaxSteps)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"llm": {"provider": "anthropic", "model": "claude-sonnet"}, "agent": {"max_steps": 50}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, 50, cfg.Agent.MaxSteps)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.LLM.Model = "gpt-4o-mini"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", loaded.LLM.Model)
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.Error(t, err)

	cfg.LLM.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm": {"provider": "gemini"}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}
