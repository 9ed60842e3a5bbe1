package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYRESOLVER_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load. A missing file is
// not an error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYRESOLVER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Polymarket.GammaHost, "POLYRESOLVER_GAMMA_HOST")

	setFloat(&cfg.Resolver.MinSimilarity, "POLYRESOLVER_MIN_SIMILARITY")
	setInt(&cfg.Resolver.UniverseLimit, "POLYRESOLVER_UNIVERSE_LIMIT")
	setDuration(&cfg.Resolver.UniverseTTL, "POLYRESOLVER_UNIVERSE_TTL")
	setDuration(&cfg.Resolver.ContextTTL, "POLYRESOLVER_CONTEXT_TTL")

	setBool(&cfg.Redis.Enabled, "POLYRESOLVER_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYRESOLVER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYRESOLVER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYRESOLVER_REDIS_DB")

	setStr(&cfg.Postgres.DSN, "POLYRESOLVER_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POLYRESOLVER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POLYRESOLVER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POLYRESOLVER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POLYRESOLVER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POLYRESOLVER_POSTGRES_PASSWORD")

	setStr(&cfg.Mode, "POLYRESOLVER_MODE")
	setStr(&cfg.LogLevel, "POLYRESOLVER_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
