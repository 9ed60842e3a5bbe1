package domain

import (
	"context"
	"time"
)

// MarketDataProvider is the outbound interface to the external market
// catalog. Misses are reported as ErrNotFound; any other error is a transport
// or provider failure. The resolver treats both as "this lookup found
// nothing" everywhere except the very first universe-cache population.
type MarketDataProvider interface {
	// FetchMarkets returns up to limit markets from the catalog.
	FetchMarkets(ctx context.Context, limit int) ([]MarketRecord, error)
	// FetchMarketByID looks a market up by its id or condition id.
	FetchMarketByID(ctx context.Context, id string) (MarketRecord, error)
	// FetchMarketBySlug looks a market up by its URL slug.
	FetchMarketBySlug(ctx context.Context, slug string) (MarketRecord, error)
	// FetchEventBySlug looks an event (and its contained markets) up by slug.
	FetchEventBySlug(ctx context.Context, slug string) (EventRecord, error)
	// FetchSearchMarkets runs a remote full-text search for the given term.
	FetchSearchMarkets(ctx context.Context, term string) (SearchResult, error)
}

// Clock abstracts time.Now so TTL behavior is testable with a fake clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
