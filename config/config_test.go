package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"nvidia.com", "nvidia.github.io"}, cfg.AllowedRoots)
	assert.Len(t, cfg.Domains, 8)
	assert.Equal(t, 200*time.Millisecond, cfg.Search.RateInterval)
	assert.Equal(t, 5, cfg.Limits.Concurrency)
	assert.True(t, cfg.Fetch.BlockPrivateNetworks)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
search:
  engine: duckduckgo
  rate_interval: 500ms
fetch:
  timeout: 3s
limits:
  concurrency: 2
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(domainsEnv, "docs.nvidia.com, developer.nvidia.com")
	t.Setenv(apiKeyEnv, "secret")
	t.Setenv(logLevelEnv, "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "duckduckgo", cfg.Search.Engine)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.RateInterval)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2, cfg.Limits.Concurrency)
	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Fetch.MaxRedirects)

	assert.Equal(t, []string{"docs.nvidia.com", "developer.nvidia.com"}, cfg.Domains)
	assert.Equal(t, "secret", cfg.Search.APIKey)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9090\n"), 0o600))
	t.Setenv(httpAddrEnv, "")
	os.Unsetenv(httpAddrEnv)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no roots", func(c *Config) { c.AllowedRoots = nil }},
		{"no domains", func(c *Config) { c.Domains = nil }},
		{"bad engine", func(c *Config) { c.Search.Engine = "bing" }},
		{"zero rate", func(c *Config) { c.Search.RateInterval = 0 }},
		{"zero concurrency", func(c *Config) { c.Limits.Concurrency = 0 }},
		{"deadline below fetch timeout", func(c *Config) { c.Limits.Deadline = time.Second }},
		{"per domain above hard max", func(c *Config) { c.Limits.MaxResultsPerDomain = 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
