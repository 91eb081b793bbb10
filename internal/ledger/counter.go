// Package ledger maintains the index structures layered over the key-value
// store: per-kind id allocation, the dense per-status id arrays, and the
// append-only per-party id lists.
package ledger

import (
	"context"

	"github.com/paystream/ledger/internal/storage"
)

// NextID allocates the next id for an entity kind. Ids are strictly increasing
// and start at 1.
func NextID(ctx context.Context, s storage.Store, kind storage.Kind) (uint64, error) {
	counter, err := storage.GetUint64(ctx, s, storage.CounterKey(kind))
	if err != nil {
		return 0, err
	}
	id := counter + 1
	if err := storage.SetUint64(ctx, s, storage.CounterKey(kind), id); err != nil {
		return 0, err
	}
	return id, nil
}

// CurrentID returns the highest id allocated so far for an entity kind, zero
// when none have been allocated.
func CurrentID(ctx context.Context, s storage.Store, kind storage.Kind) (uint64, error) {
	return storage.GetUint64(ctx, s, storage.CounterKey(kind))
}
