// Package config defines the top-level configuration for the resolver and
// provides validation helpers.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYRESOLVER_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Resolver   ResolverConfig   `toml:"resolver"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Mirror     MirrorConfig     `toml:"mirror"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
}

// ResolverConfig holds the resolution-engine tuning knobs. The similarity
// threshold is hand-tuned, not derived; it is configuration precisely so
// operators can retune it.
type ResolverConfig struct {
	MinSimilarity float64  `toml:"min_similarity"`
	MaxResults    int      `toml:"max_results"`
	UniverseTTL   duration `toml:"universe_ttl"`
	UniverseLimit int      `toml:"universe_limit"`
	ContextTTL    duration `toml:"context_ttl"`
}

// RedisConfig holds Redis connection parameters for the optional shared
// conversation store. When disabled, conversations live in process memory.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters for the catalog
// mirror.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// MirrorConfig holds catalog mirror pipeline parameters.
type MirrorConfig struct {
	Interval  duration `toml:"interval"`
	BatchSize int      `toml:"batch_size"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Resolver: ResolverConfig{
			MinSimilarity: 0.15,
			MaxResults:    5,
			UniverseTTL:   duration{60 * time.Second},
			UniverseLimit: 300,
			ContextTTL:    duration{30 * time.Minute},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Mirror: MirrorConfig{
			Interval:  duration{5 * time.Minute},
			BatchSize: 200,
		},
		Mode:     "resolve",
		LogLevel: "info",
	}
}

// Validate checks the configuration for internally inconsistent or
// out-of-range values.
func (c *Config) Validate() error {
	switch c.Mode {
	case "resolve", "mirror":
	default:
		return fmt.Errorf("config: unsupported mode %q", c.Mode)
	}

	if c.Polymarket.GammaHost == "" {
		return fmt.Errorf("config: polymarket.gamma_host is required")
	}
	if c.Resolver.MinSimilarity < 0 || c.Resolver.MinSimilarity > 1 {
		return fmt.Errorf("config: resolver.min_similarity must be in [0,1], got %v", c.Resolver.MinSimilarity)
	}
	if c.Resolver.UniverseTTL.Duration <= 0 {
		return fmt.Errorf("config: resolver.universe_ttl must be positive")
	}
	if c.Resolver.ContextTTL.Duration <= 0 {
		return fmt.Errorf("config: resolver.context_ttl must be positive")
	}
	if c.Resolver.UniverseLimit <= 0 {
		return fmt.Errorf("config: resolver.universe_limit must be positive")
	}

	if c.Mode == "mirror" {
		if c.Postgres.DSN == "" && c.Postgres.Host == "" {
			return fmt.Errorf("config: mirror mode requires a postgres connection")
		}
		if c.Mirror.Interval.Duration <= 0 {
			return fmt.Errorf("config: mirror.interval must be positive")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}

	return nil
}
