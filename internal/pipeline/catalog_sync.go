// Package pipeline contains the catalog mirror syncer, which periodically
// snapshots the market universe into the persistent catalog store.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// UniverseSource serves the shared market-universe snapshot.
type UniverseSource interface {
	Get(ctx context.Context, forceRefresh bool) ([]domain.MarketRecord, error)
}

// CatalogSyncer mirrors universe snapshots into a CatalogStore.
type CatalogSyncer struct {
	source UniverseSource
	store  domain.CatalogStore
	logger *slog.Logger

	// batchSize bounds each upsert batch; chunks run concurrently.
	batchSize int
}

// NewCatalogSyncer creates a CatalogSyncer. A non-positive batchSize falls
// back to 200.
func NewCatalogSyncer(source UniverseSource, store domain.CatalogStore, batchSize int, logger *slog.Logger) *CatalogSyncer {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &CatalogSyncer{
		source:    source,
		store:     store,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run executes a single mirror pass: force-refresh the universe and upsert it
// in batches.
func (s *CatalogSyncer) Run(ctx context.Context) error {
	markets, err := s.source.Get(ctx, true)
	if err != nil {
		return fmt.Errorf("catalog sync: fetch universe: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(markets); start += s.batchSize {
		end := start + s.batchSize
		if end > len(markets) {
			end = len(markets)
		}
		chunk := markets[start:end]
		g.Go(func() error {
			return s.store.UpsertBatch(ctx, chunk)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("catalog sync: upsert: %w", err)
	}

	s.logger.InfoContext(ctx, "catalog sync complete",
		slog.Int("markets", len(markets)),
	)
	return nil
}

// RunLoop runs the mirror pass on a repeating interval until the context is
// cancelled. A failed pass is logged and retried on the next tick.
func (s *CatalogSyncer) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	if err := s.Run(ctx); err != nil {
		s.logger.Error("catalog sync failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("catalog sync loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Error("catalog sync failed", slog.String("error", err.Error()))
			}
		}
	}
}
