// Package app wires the configured components together and drives the
// process lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polyresolver/internal/cache/memory"
	"github.com/alanyoungcy/polyresolver/internal/cache/redis"
	"github.com/alanyoungcy/polyresolver/internal/config"
	"github.com/alanyoungcy/polyresolver/internal/domain"
	"github.com/alanyoungcy/polyresolver/internal/pipeline"
	"github.com/alanyoungcy/polyresolver/internal/platform/polymarket"
	"github.com/alanyoungcy/polyresolver/internal/resolver"
	"github.com/alanyoungcy/polyresolver/internal/store/postgres"
)

// Dependencies holds every constructed component, keyed by role. Optional
// components are nil when the configuration does not enable them.
type Dependencies struct {
	Provider domain.MarketDataProvider
	Universe *memory.UniverseCache
	Contexts domain.ConversationStore
	Engine   *resolver.Engine
	Syncer   *pipeline.CatalogSyncer

	closers []func()
}

// Close releases held resources in reverse construction order.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// needsPostgres reports whether the configured mode requires the catalog
// store.
func needsPostgres(mode string) bool {
	return mode == "mirror"
}

// Wire constructs the dependency graph from configuration. On error every
// already-opened resource is closed before returning.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}
	clock := domain.SystemClock{}

	deps.Provider = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	deps.Universe = memory.NewUniverseCache(
		deps.Provider,
		clock,
		cfg.Resolver.UniverseTTL.Duration,
		cfg.Resolver.UniverseLimit,
		logger,
	)

	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("app: wire redis: %w", err)
		}
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		deps.Contexts = redis.NewContextStore(client, clock, cfg.Resolver.ContextTTL.Duration)
		logger.Info("conversation store: redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		deps.Contexts = memory.NewContextStore(clock, cfg.Resolver.ContextTTL.Duration)
		logger.Info("conversation store: in-memory")
	}

	deps.Engine = resolver.NewEngine(resolver.EngineConfig{
		Provider:      deps.Provider,
		Universe:      deps.Universe,
		Contexts:      deps.Contexts,
		Clock:         clock,
		Logger:        logger,
		MinSimilarity: cfg.Resolver.MinSimilarity,
	})

	if needsPostgres(cfg.Mode) {
		pg, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("app: wire postgres: %w", err)
		}
		deps.closers = append(deps.closers, pg.Close)

		if cfg.Postgres.RunMigrations {
			if err := pg.RunMigrations(ctx); err != nil {
				deps.Close()
				return nil, fmt.Errorf("app: run migrations: %w", err)
			}
		}

		deps.Syncer = pipeline.NewCatalogSyncer(
			deps.Universe,
			postgres.NewCatalogStore(pg.Pool()),
			cfg.Mirror.BatchSize,
			logger,
		)
	}

	return deps, nil
}
