package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// DefaultContextTTL is how long an idle conversation survives between turns.
const DefaultContextTTL = 30 * time.Minute

// ContextStore is the in-memory domain.ConversationStore. Eviction is lazy:
// every access first prunes entries idle longer than the TTL, so a dead
// context is removed at most one access-cycle late. There is no background
// sweeper.
type ContextStore struct {
	clock domain.Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]domain.ConversationContext
}

// NewContextStore creates a ContextStore. A non-positive ttl falls back to
// DefaultContextTTL.
func NewContextStore(clock domain.Clock, ttl time.Duration) *ContextStore {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &ContextStore{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]domain.ConversationContext),
	}
}

// Get returns the live context for id, pruning every expired entry first. A
// missing or expired id yields domain.ErrNotFound. Reading does not refresh
// UpdatedAt; only Save does.
func (s *ContextStore) Get(_ context.Context, id string) (domain.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	cc, ok := s.entries[id]
	if !ok {
		return domain.ConversationContext{}, domain.ErrNotFound
	}
	return cc, nil
}

// Save upserts the context under id with UpdatedAt set to the current time.
func (s *ContextStore) Save(_ context.Context, id string, cc domain.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cc.UpdatedAt = s.clock.Now()
	s.entries[id] = cc
	return nil
}

// Len reports the number of live entries after a prune pass.
func (s *ContextStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.entries)
}

// Clear drops every stored context.
func (s *ContextStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]domain.ConversationContext)
	s.mu.Unlock()
}

func (s *ContextStore) pruneLocked() {
	cutoff := s.clock.Now().Add(-s.ttl)
	for id, cc := range s.entries {
		if cc.UpdatedAt.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// Compile-time interface check.
var _ domain.ConversationStore = (*ContextStore)(nil)
