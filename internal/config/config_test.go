package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/relay/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.ProtectedBranch)
	assert.Equal(t, "Cargo.toml", cfg.ManifestPath)
	assert.Equal(t, "Dockerfile", cfg.BuildFile)
	assert.Equal(t, "NOTIFY_WEBHOOK_URL", cfg.WebhookRef)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RELAY_PROTECTED_BRANCH", "master")
	t.Setenv("RELAY_IMAGE_REF", "registry.example.com/org/widget")
	t.Setenv("RELAY_REGISTRY_URL", "registry.example.com")
	t.Setenv("RELAY_LOG_LEVEL", "debug")
	t.Setenv("RELAY_LOG_FORMAT", "console")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.ProtectedBranch)
	assert.Equal(t, "registry.example.com/org/widget", cfg.ImageRef)
	assert.Equal(t, "registry.example.com", cfg.RegistryURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestActionURL(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Repository = "org/widget"
	cfg.RunID = "918273"

	assert.Equal(t, "https://github.com/org/widget/actions/runs/918273", cfg.ActionURL())
}

func TestActionURLTrimsTrailingSlash(t *testing.T) {
	cfg := config.NewDefault()
	cfg.PlatformURL = "https://ci.example.com/"
	cfg.Repository = "org/widget"
	cfg.RunID = "1"

	assert.Equal(t, "https://ci.example.com/org/widget/actions/runs/1", cfg.ActionURL())
}

func TestValidate(t *testing.T) {
	cfg := config.NewDefault()
	require.NoError(t, cfg.Validate())

	cfg.ProtectedBranch = ""
	assert.Error(t, cfg.Validate())

	cfg = config.NewDefault()
	cfg.ManifestPath = ""
	assert.Error(t, cfg.Validate())

	cfg = config.NewDefault()
	cfg.BuildFile = ""
	assert.Error(t, cfg.Validate())
}
