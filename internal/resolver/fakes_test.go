package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// fakeProvider is an in-memory domain.MarketDataProvider with per-method call
// counters.
type fakeProvider struct {
	mu sync.Mutex

	list   []domain.MarketRecord
	byID   map[string]domain.MarketRecord
	bySlug map[string]domain.MarketRecord
	events map[string]domain.EventRecord
	search map[string]domain.SearchResult

	listErr error

	fetchMarketsCalls int
	fetchByIDCalls    int
	fetchBySlugCalls  int
	fetchEventCalls   int
	searchCalls       int
	searchedTerms     []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		byID:   make(map[string]domain.MarketRecord),
		bySlug: make(map[string]domain.MarketRecord),
		events: make(map[string]domain.EventRecord),
		search: make(map[string]domain.SearchResult),
	}
}

func (f *fakeProvider) addMarket(m domain.MarketRecord) {
	if m.ID != "" {
		f.byID[m.ID] = m
	}
	if m.ConditionID != "" {
		f.byID[m.ConditionID] = m
	}
	if m.Slug != "" {
		f.bySlug[m.Slug] = m
	}
}

func (f *fakeProvider) FetchMarkets(_ context.Context, _ int) ([]domain.MarketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchMarketsCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeProvider) FetchMarketByID(_ context.Context, id string) (domain.MarketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchByIDCalls++
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return domain.MarketRecord{}, fmt.Errorf("fake: %w: id=%s", domain.ErrNotFound, id)
}

func (f *fakeProvider) FetchMarketBySlug(_ context.Context, slug string) (domain.MarketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchBySlugCalls++
	if m, ok := f.bySlug[slug]; ok {
		return m, nil
	}
	return domain.MarketRecord{}, fmt.Errorf("fake: %w: slug=%s", domain.ErrNotFound, slug)
}

func (f *fakeProvider) FetchEventBySlug(_ context.Context, slug string) (domain.EventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchEventCalls++
	if ev, ok := f.events[slug]; ok {
		return ev, nil
	}
	return domain.EventRecord{}, fmt.Errorf("fake: %w: event=%s", domain.ErrNotFound, slug)
}

func (f *fakeProvider) FetchSearchMarkets(_ context.Context, term string) (domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.searchedTerms = append(f.searchedTerms, term)
	if res, ok := f.search[term]; ok {
		return res, nil
	}
	return domain.SearchResult{}, fmt.Errorf("fake: %w: search=%q", domain.ErrNotFound, term)
}

var _ domain.MarketDataProvider = (*fakeProvider)(nil)

// fakeUniverse serves a fixed snapshot without any caching behavior.
type fakeUniverse struct {
	markets []domain.MarketRecord
	err     error
	calls   int
}

func (f *fakeUniverse) Get(_ context.Context, _ bool) ([]domain.MarketRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

var _ UniverseSource = (*fakeUniverse)(nil)

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

func ptr(v float64) *float64 { return &v }
