package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

type fakeSource struct {
	markets []domain.MarketRecord
	err     error
	forced  bool
}

func (f *fakeSource) Get(_ context.Context, forceRefresh bool) ([]domain.MarketRecord, error) {
	f.forced = forceRefresh
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

type recordingStore struct {
	mu      sync.Mutex
	batches [][]domain.MarketRecord
	err     error
}

func (s *recordingStore) UpsertBatch(_ context.Context, markets []domain.MarketRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, markets)
	return nil
}

func (s *recordingStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, b := range s.batches {
		n += int64(len(b))
	}
	return n, nil
}

var _ domain.CatalogStore = (*recordingStore)(nil)

func makeMarkets(n int) []domain.MarketRecord {
	out := make([]domain.MarketRecord, n)
	for i := range out {
		out[i] = domain.MarketRecord{ID: fmt.Sprintf("m%d", i), Question: "q"}
	}
	return out
}

func TestCatalogSyncer_Run(t *testing.T) {
	source := &fakeSource{markets: makeMarkets(5)}
	store := &recordingStore{}
	s := NewCatalogSyncer(source, store, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, source.forced, "mirror passes must force-refresh the snapshot")
	assert.Len(t, store.batches, 3) // 2 + 2 + 1

	total, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestCatalogSyncer_FetchFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("gamma down")}
	store := &recordingStore{}
	s := NewCatalogSyncer(source, store, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gamma down")
	assert.Empty(t, store.batches)
}

func TestCatalogSyncer_UpsertFailure(t *testing.T) {
	source := &fakeSource{markets: makeMarkets(3)}
	store := &recordingStore{err: errors.New("db down")}
	s := NewCatalogSyncer(source, store, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCatalogSyncer_EmptyUniverse(t *testing.T) {
	source := &fakeSource{}
	store := &recordingStore{}
	s := NewCatalogSyncer(source, store, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, store.batches)
}
