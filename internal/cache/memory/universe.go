// Package memory implements the process-local cache layer: the shared market
// universe snapshot and the per-conversation context store. Both are owned by
// this package; nothing else writes them directly.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// DefaultUniverseTTL bounds the staleness of the shared market snapshot.
const DefaultUniverseTTL = 60 * time.Second

// UniverseCache holds a single shared snapshot of the market universe with an
// upper-bound staleness. The snapshot is replaced wholesale on refresh, never
// mutated in place, so readers always see a consistent slice. Racing
// refreshes collapse into one provider fetch via singleflight.
type UniverseCache struct {
	provider domain.MarketDataProvider
	clock    domain.Clock
	ttl      time.Duration
	limit    int
	logger   *slog.Logger

	mu        sync.RWMutex
	data      []domain.MarketRecord
	fetchedAt time.Time

	sf singleflight.Group
}

// NewUniverseCache creates a UniverseCache. A non-positive ttl falls back to
// DefaultUniverseTTL.
func NewUniverseCache(provider domain.MarketDataProvider, clock domain.Clock, ttl time.Duration, limit int, logger *slog.Logger) *UniverseCache {
	if ttl <= 0 {
		ttl = DefaultUniverseTTL
	}
	if limit <= 0 {
		limit = 300
	}
	return &UniverseCache{
		provider: provider,
		clock:    clock,
		ttl:      ttl,
		limit:    limit,
		logger:   logger,
	}
}

// Get returns the cached market list, refreshing it first when the cache is
// empty, forced, or older than the TTL. A failed refresh serves the previous
// non-empty snapshot (stale data is the designed degraded mode); only when no
// snapshot exists does the fetch error propagate.
func (c *UniverseCache) Get(ctx context.Context, forceRefresh bool) ([]domain.MarketRecord, error) {
	c.mu.RLock()
	data, fetchedAt := c.data, c.fetchedAt
	c.mu.RUnlock()

	if len(data) > 0 && !forceRefresh && c.clock.Now().Sub(fetchedAt) < c.ttl {
		return data, nil
	}

	fresh, err, _ := c.sf.Do("universe", func() (any, error) {
		markets, err := c.provider.FetchMarkets(ctx, c.limit)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.data = markets
		c.fetchedAt = c.clock.Now()
		c.mu.Unlock()
		return markets, nil
	})
	if err != nil {
		if len(data) > 0 {
			c.logger.WarnContext(ctx, "universe cache: refresh failed, serving stale snapshot",
				slog.Int("markets", len(data)),
				slog.String("age", c.clock.Now().Sub(fetchedAt).String()),
				slog.String("error", err.Error()),
			)
			return data, nil
		}
		return nil, fmt.Errorf("universe cache: refresh: %w", err)
	}

	return fresh.([]domain.MarketRecord), nil
}

// Clear drops the snapshot so the next Get performs a fresh fetch.
func (c *UniverseCache) Clear() {
	c.mu.Lock()
	c.data = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
