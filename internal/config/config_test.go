package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "serve" }},
		{"missing gamma host", func(c *Config) { c.Polymarket.GammaHost = "" }},
		{"similarity above one", func(c *Config) { c.Resolver.MinSimilarity = 1.5 }},
		{"negative similarity", func(c *Config) { c.Resolver.MinSimilarity = -0.1 }},
		{"zero universe ttl", func(c *Config) { c.Resolver.UniverseTTL = duration{} }},
		{"zero context ttl", func(c *Config) { c.Resolver.ContextTTL = duration{} }},
		{"zero universe limit", func(c *Config) { c.Resolver.UniverseLimit = 0 }},
		{"redis enabled without addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}},
		{"mirror without postgres", func(c *Config) {
			c.Mode = "mirror"
			c.Postgres.DSN = ""
			c.Postgres.Host = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
mode = "resolve"
log_level = "debug"

[resolver]
min_similarity = 0.25
universe_ttl = "90s"
context_ttl = "15m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.25, cfg.Resolver.MinSimilarity)
	assert.Equal(t, 90*time.Second, cfg.Resolver.UniverseTTL.Duration)
	assert.Equal(t, 15*time.Minute, cfg.Resolver.ContextTTL.Duration)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Resolver.MinSimilarity, cfg.Resolver.MinSimilarity)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POLYRESOLVER_GAMMA_HOST", "https://gamma.example.com")
	t.Setenv("POLYRESOLVER_MIN_SIMILARITY", "0.3")
	t.Setenv("POLYRESOLVER_UNIVERSE_TTL", "2m")
	t.Setenv("POLYRESOLVER_REDIS_ENABLED", "true")
	t.Setenv("POLYRESOLVER_MODE", "mirror")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://gamma.example.com", cfg.Polymarket.GammaHost)
	assert.Equal(t, 0.3, cfg.Resolver.MinSimilarity)
	assert.Equal(t, 2*time.Minute, cfg.Resolver.UniverseTTL.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "mirror", cfg.Mode)
}

func TestLoad_BadTOMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
