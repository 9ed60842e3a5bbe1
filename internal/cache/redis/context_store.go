package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// ContextStore implements domain.ConversationStore on Redis with JSON values.
// Idle eviction is delegated to Redis key expiry, so pruning needs no sweeps
// at all here.
//
// Key schema:
//
//	resolver:ctx:{id} - string value containing JSON
type ContextStore struct {
	rdb   *redis.Client
	clock domain.Clock
	ttl   time.Duration
}

// NewContextStore creates a ContextStore backed by the given Client. The ttl
// is applied as the Redis expiry on every save, refreshing the idle window.
func NewContextStore(c *Client, clock domain.Clock, ttl time.Duration) *ContextStore {
	return &ContextStore{rdb: c.Underlying(), clock: clock, ttl: ttl}
}

func contextKey(id string) string { return "resolver:ctx:" + id }

// Get retrieves the conversation context for id. It returns
// domain.ErrNotFound when the key does not exist or has expired.
func (s *ContextStore) Get(ctx context.Context, id string) (domain.ConversationContext, error) {
	data, err := s.rdb.Get(ctx, contextKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ConversationContext{}, domain.ErrNotFound
		}
		return domain.ConversationContext{}, fmt.Errorf("redis: get context %s: %w", id, err)
	}

	var cc domain.ConversationContext
	if err := json.Unmarshal(data, &cc); err != nil {
		return domain.ConversationContext{}, fmt.Errorf("redis: unmarshal context %s: %w", id, err)
	}
	return cc, nil
}

// Save upserts the context under id with UpdatedAt set to the current time
// and the idle TTL reset.
func (s *ContextStore) Save(ctx context.Context, id string, cc domain.ConversationContext) error {
	cc.UpdatedAt = s.clock.Now()

	data, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("redis: marshal context %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, contextKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set context %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ConversationStore = (*ContextStore)(nil)
