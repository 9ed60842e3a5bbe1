package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// CatalogStore implements domain.CatalogStore using PostgreSQL. The mirror
// pipeline is its only writer; the resolver never reads from it.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore creates a new CatalogStore backed by the given pool.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const upsertQuery = `
	INSERT INTO catalog_markets (
		id, condition_id, slug, question, description,
		yes_price, no_price, liquidity, volume_24hr,
		end_date, token_ids, outcomes, synced_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, NOW()
	)
	ON CONFLICT (id) DO UPDATE SET
		condition_id = EXCLUDED.condition_id,
		slug         = EXCLUDED.slug,
		question     = EXCLUDED.question,
		description  = EXCLUDED.description,
		yes_price    = EXCLUDED.yes_price,
		no_price     = EXCLUDED.no_price,
		liquidity    = EXCLUDED.liquidity,
		volume_24hr  = EXCLUDED.volume_24hr,
		end_date     = EXCLUDED.end_date,
		token_ids    = EXCLUDED.token_ids,
		outcomes     = EXCLUDED.outcomes,
		synced_at    = NOW()`

// UpsertBatch inserts or updates a snapshot batch in a single pgx batch
// round-trip.
func (s *CatalogStore) UpsertBatch(ctx context.Context, markets []domain.MarketRecord) error {
	if len(markets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range markets {
		m := &markets[i]
		tokenIDs := make([]string, 0, len(m.Tokens))
		for _, t := range m.Tokens {
			tokenIDs = append(tokenIDs, t.TokenID)
		}
		batch.Queue(upsertQuery,
			m.ID, m.ConditionID, m.Slug, m.Question, m.Description,
			m.YesPrice, m.NoPrice, m.Liquidity, m.Volume24hr,
			m.EndDate, tokenIDs, m.Outcomes,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range markets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert catalog batch: %w", err)
		}
	}
	return nil
}

// Count returns the number of mirrored markets.
func (s *CatalogStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM catalog_markets").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count catalog markets: %w", err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.CatalogStore = (*CatalogStore)(nil)
