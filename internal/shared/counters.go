package shared

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterStore hands out per-kind sequential document numbers. Numbers come
// from a counters table instead of MAX(number) over the documents, so a
// deleted document never frees its number for reuse.
type CounterStore struct {
	pool *pgxpool.Pool
}

// NewCounterStore constructs CounterStore.
func NewCounterStore(pool *pgxpool.Pool) *CounterStore {
	return &CounterStore{pool: pool}
}

// Next increments and returns the counter for kind, creating it at 1 on
// first use. The upsert makes concurrent allocations serialize on the row.
func (c *CounterStore) Next(ctx context.Context, kind string) (int, error) {
	var n int
	err := c.pool.QueryRow(ctx, `
		INSERT INTO document_counters (kind, last_number)
		VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET last_number = document_counters.last_number + 1
		RETURNING last_number`, kind).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
