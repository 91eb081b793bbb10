package ledger

import (
	"context"
	"fmt"

	"github.com/paystream/ledger/internal/models"
	"github.com/paystream/ledger/internal/storage"
)

// StatusIndex partitions the ids of one entity kind by status. Each status
// holds a dense array position→id plus a reverse map id→position, giving O(1)
// insertion and removal. Removal is swap-remove: the last id fills the vacated
// slot, so array order is insertion order only until the first removal.
//
// An id is in at most one status at a time, which is why the reverse map is
// keyed by id alone.
type StatusIndex struct {
	kind storage.Kind
}

// NewStatusIndex creates the status index for an entity kind.
func NewStatusIndex(kind storage.Kind) *StatusIndex {
	return &StatusIndex{kind: kind}
}

// Add appends id to the dense array for status.
func (x *StatusIndex) Add(ctx context.Context, s storage.Store, status string, id uint64) error {
	count, err := x.Count(ctx, s, status)
	if err != nil {
		return err
	}
	if err := storage.SetUint64(ctx, s, storage.StatusEntryKey(x.kind, status, count), id); err != nil {
		return err
	}
	if err := storage.SetUint64(ctx, s, storage.StatusCountKey(x.kind, status), count+1); err != nil {
		return err
	}
	return storage.SetUint64(ctx, s, storage.StatusPosKey(x.kind, id), count)
}

// Remove deletes id from the dense array for status, swap-filling the hole
// with the last element. Returns models.ErrNotIndexed when the id has no
// recorded position or the array is empty.
func (x *StatusIndex) Remove(ctx context.Context, s storage.Store, status string, id uint64) error {
	count, err := x.Count(ctx, s, status)
	if err != nil {
		return err
	}
	if count == 0 {
		return models.ErrNotIndexed
	}

	pos, ok, err := storage.LookupUint64(ctx, s, storage.StatusPosKey(x.kind, id))
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrNotIndexed
	}

	last := count - 1
	if pos != last {
		lastID, err := storage.GetUint64(ctx, s, storage.StatusEntryKey(x.kind, status, last))
		if err != nil {
			return err
		}
		if err := storage.SetUint64(ctx, s, storage.StatusEntryKey(x.kind, status, pos), lastID); err != nil {
			return err
		}
		if err := storage.SetUint64(ctx, s, storage.StatusPosKey(x.kind, lastID), pos); err != nil {
			return err
		}
	}

	if err := s.Delete(ctx, storage.StatusEntryKey(x.kind, status, last)); err != nil {
		return err
	}
	if err := s.Delete(ctx, storage.StatusPosKey(x.kind, id)); err != nil {
		return err
	}
	return storage.SetUint64(ctx, s, storage.StatusCountKey(x.kind, status), last)
}

// Move transfers an id from one status to another.
func (x *StatusIndex) Move(ctx context.Context, s storage.Store, from, to string, id uint64) error {
	if err := x.Remove(ctx, s, from, id); err != nil {
		return err
	}
	return x.Add(ctx, s, to, id)
}

// Count returns the number of ids currently in status.
func (x *StatusIndex) Count(ctx context.Context, s storage.Store, status string) (uint64, error) {
	return storage.GetUint64(ctx, s, storage.StatusCountKey(x.kind, status))
}

// Contains reports whether id is currently indexed under any status, and its
// position if so.
func (x *StatusIndex) Contains(ctx context.Context, s storage.Store, id uint64) (uint64, bool, error) {
	return storage.LookupUint64(ctx, s, storage.StatusPosKey(x.kind, id))
}

// Page returns up to limit ids from the dense array for status, starting at
// offset, in array order. Empty when limit is zero or offset is past the end.
func (x *StatusIndex) Page(ctx context.Context, s storage.Store, status string, limit, offset uint64) ([]uint64, error) {
	count, err := x.Count(ctx, s, status)
	if err != nil {
		return nil, err
	}
	end, ok := pageEnd(count, limit, offset)
	if !ok {
		return nil, nil
	}

	ids := make([]uint64, 0, end-offset)
	for pos := offset; pos < end; pos++ {
		id, err := storage.GetUint64(ctx, s, storage.StatusEntryKey(x.kind, status, pos))
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, fmt.Errorf("status index %s/%s has a gap at position %d", x.kind, status, pos)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// pageEnd clamps a (limit, offset) window against count with a saturating
// offset+limit. The second return is false when the window is empty.
func pageEnd(count, limit, offset uint64) (uint64, bool) {
	if limit == 0 || offset >= count {
		return 0, false
	}
	end := offset + limit
	if end < offset || end > count { // overflow or past the end
		end = count
	}
	return end, true
}
