package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream/ledger/internal/models"
	"github.com/paystream/ledger/internal/storage"
)

func TestNextID(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	current, err := CurrentID(ctx, s, storage.KindPayment)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), current)

	for want := uint64(1); want <= 3; want++ {
		id, err := NextID(ctx, s, storage.KindPayment)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	// Refund ids are allocated independently of payment ids.
	id, err := NextID(ctx, s, storage.KindRefund)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	current, err = CurrentID(ctx, s, storage.KindPayment)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), current)
}

func TestStatusIndex_AddAndPage(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewStatusIndex(storage.KindRefund)

	for _, id := range []uint64{10, 20, 30} {
		require.NoError(t, idx.Add(ctx, s, "REQUESTED", id))
	}

	count, err := idx.Count(ctx, s, "REQUESTED")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	ids, err := idx.Page(ctx, s, "REQUESTED", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 20, 30}, ids)

	pos, ok, err := idx.Contains(ctx, s, 20)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), pos)

	_, ok, err = idx.Contains(ctx, s, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatusIndex_SwapRemove(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewStatusIndex(storage.KindRefund)

	for _, id := range []uint64{1, 2, 3} {
		require.NoError(t, idx.Add(ctx, s, "REQUESTED", id))
	}

	// Removing the middle entry swap-fills the hole with the last id.
	require.NoError(t, idx.Remove(ctx, s, "REQUESTED", 2))

	ids, err := idx.Page(ctx, s, "REQUESTED", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, ids)

	pos, ok, err := idx.Contains(ctx, s, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), pos)

	_, ok, err = idx.Contains(ctx, s, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing the tail needs no swap.
	require.NoError(t, idx.Remove(ctx, s, "REQUESTED", 3))
	ids, err = idx.Page(ctx, s, "REQUESTED", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)

	require.NoError(t, idx.Remove(ctx, s, "REQUESTED", 1))
	count, err := idx.Count(ctx, s, "REQUESTED")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestStatusIndex_RemoveMissing(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewStatusIndex(storage.KindRefund)

	err := idx.Remove(ctx, s, "REQUESTED", 1)
	assert.ErrorIs(t, err, models.ErrNotIndexed)

	require.NoError(t, idx.Add(ctx, s, "REQUESTED", 1))
	err = idx.Remove(ctx, s, "REQUESTED", 99)
	assert.ErrorIs(t, err, models.ErrNotIndexed)
}

func TestStatusIndex_Move(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewStatusIndex(storage.KindRefund)

	require.NoError(t, idx.Add(ctx, s, "REQUESTED", 5))
	require.NoError(t, idx.Move(ctx, s, "REQUESTED", "APPROVED", 5))

	requested, err := idx.Count(ctx, s, "REQUESTED")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), requested)

	approved, err := idx.Page(ctx, s, "APPROVED", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, approved)
}

func TestPageEnd(t *testing.T) {
	tests := []struct {
		name    string
		count   uint64
		limit   uint64
		offset  uint64
		wantEnd uint64
		wantOK  bool
	}{
		{"window inside", 10, 3, 2, 5, true},
		{"window clamped to count", 10, 100, 8, 10, true},
		{"offset at end", 10, 5, 10, 0, false},
		{"offset past end", 10, 5, 11, 0, false},
		{"zero limit", 10, 0, 0, 0, false},
		{"empty index", 0, 5, 0, 0, false},
		{"offset plus limit overflows", 10, ^uint64(0), 5, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, ok := pageEnd(tt.count, tt.limit, tt.offset)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}
