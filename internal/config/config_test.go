package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultTotalBudget, cfg.Budget.Total)
	assert.Equal(t, "nvidia", cfg.Provider.Backend)
	assert.Equal(t, DefaultCacheMaxEntries, cfg.Cache.MaxEntries)
	assert.Equal(t, DefaultQualityThreshold, cfg.Workflow.QualityThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
budget:
  total: 100.5
workflow:
  quality_threshold: 0.8
  db_path: /tmp/runs.db
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 100.5, cfg.Budget.Total)
	assert.Equal(t, 0.8, cfg.Workflow.QualityThreshold)
	assert.Equal(t, "/tmp/runs.db", cfg.Workflow.DBPath)
	// Untouched keys keep their defaults.
	assert.Equal(t, "nvidia", cfg.Provider.Backend)
	assert.Equal(t, DefaultServerReadTimeout, cfg.Server.ReadTimeout)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_ORCH_KEY", "secret-key-123")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  api_key: ${TEST_ORCH_KEY}
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key-123", cfg.Provider.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, false},
		{"huge port", func(c *Config) { c.Server.Port = 70000 }, false},
		{"negative budget", func(c *Config) { c.Budget.Total = -5 }, false},
		{"unknown backend", func(c *Config) { c.Provider.Backend = "azure" }, false},
		{"bedrock backend", func(c *Config) { c.Provider.Backend = "bedrock" }, true},
		{"negative cache", func(c *Config) { c.Cache.MaxEntries = -1 }, false},
		{"threshold above one", func(c *Config) { c.Workflow.QualityThreshold = 1.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultTimeouts(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultProviderTimeout, cfg.Provider.Timeout)
}
