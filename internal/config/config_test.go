package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 1000, cfg.LLM.Generation.MaxTokens)
	assert.Equal(t, 20, cfg.LLM.Title.MaxTokens)
	assert.Equal(t, "gen4_turbo", cfg.Video.RunwayModel)
	assert.Equal(t, 120, cfg.Server.HTTPTimeoutSeconds)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: \"gemini\"\n")
	t.Setenv("LLM_API_KEY", "secret-key")
	t.Setenv("STORE_DRIVER", "redis")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey)
	assert.Equal(t, "redis", cfg.Store.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
