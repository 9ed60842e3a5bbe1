package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// countingProvider implements domain.MarketDataProvider with a scripted
// FetchMarkets response; the other methods are unused by this package.
type countingProvider struct {
	mu      sync.Mutex
	markets []domain.MarketRecord
	err     error
	calls   int
}

func (p *countingProvider) FetchMarkets(_ context.Context, _ int) ([]domain.MarketRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.markets, nil
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *countingProvider) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *countingProvider) FetchMarketByID(_ context.Context, _ string) (domain.MarketRecord, error) {
	return domain.MarketRecord{}, domain.ErrNotFound
}

func (p *countingProvider) FetchMarketBySlug(_ context.Context, _ string) (domain.MarketRecord, error) {
	return domain.MarketRecord{}, domain.ErrNotFound
}

func (p *countingProvider) FetchEventBySlug(_ context.Context, _ string) (domain.EventRecord, error) {
	return domain.EventRecord{}, domain.ErrNotFound
}

func (p *countingProvider) FetchSearchMarkets(_ context.Context, _ string) (domain.SearchResult, error) {
	return domain.SearchResult{}, domain.ErrNotFound
}

var _ domain.MarketDataProvider = (*countingProvider)(nil)

// fakeClock is a manually advanced domain.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var _ domain.Clock = (*fakeClock)(nil)
