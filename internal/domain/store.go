package domain

import "context"

// ConversationStore persists per-conversation resolver state. Get returns
// ErrNotFound for a missing or expired context id.
type ConversationStore interface {
	Get(ctx context.Context, id string) (ConversationContext, error)
	Save(ctx context.Context, id string, cc ConversationContext) error
}

// CatalogStore persists catalog snapshots for the mirror pipeline. It is
// write-mostly: the resolver itself never reads from it.
type CatalogStore interface {
	UpsertBatch(ctx context.Context, markets []MarketRecord) error
	Count(ctx context.Context) (int64, error)
}
