package ledger

import (
	"context"
	"fmt"

	"github.com/paystream/ledger/internal/storage"
)

// PartyIndex is an append-only per-party list of owned entity ids, used for
// paginated ownership queries. Entries keep creation order and are never
// reordered, unlike the swap-remove status index.
type PartyIndex struct {
	kind storage.Kind
	name string
}

// NewPartyIndex creates the index named name (e.g. "customer", "merchant",
// "payment") for an entity kind.
func NewPartyIndex(kind storage.Kind, name string) *PartyIndex {
	return &PartyIndex{kind: kind, name: name}
}

// Append records id as the next entry for party.
func (x *PartyIndex) Append(ctx context.Context, s storage.Store, party string, id uint64) error {
	count, err := x.Count(ctx, s, party)
	if err != nil {
		return err
	}
	if err := storage.SetUint64(ctx, s, storage.PartyEntryKey(x.kind, x.name, party, count), id); err != nil {
		return err
	}
	return storage.SetUint64(ctx, s, storage.PartyCountKey(x.kind, x.name, party), count+1)
}

// Count returns the number of ids recorded for party.
func (x *PartyIndex) Count(ctx context.Context, s storage.Store, party string) (uint64, error) {
	return storage.GetUint64(ctx, s, storage.PartyCountKey(x.kind, x.name, party))
}

// Page returns up to limit ids for party starting at offset, in creation
// order. Empty when limit is zero or offset is past the end.
func (x *PartyIndex) Page(ctx context.Context, s storage.Store, party string, limit, offset uint64) ([]uint64, error) {
	count, err := x.Count(ctx, s, party)
	if err != nil {
		return nil, err
	}
	end, ok := pageEnd(count, limit, offset)
	if !ok {
		return nil, nil
	}

	ids := make([]uint64, 0, end-offset)
	for seq := offset; seq < end; seq++ {
		id, err := storage.GetUint64(ctx, s, storage.PartyEntryKey(x.kind, x.name, party, seq))
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, fmt.Errorf("party index %s/%s/%s has a gap at entry %d", x.kind, x.name, party, seq)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
