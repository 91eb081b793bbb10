package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream/ledger/internal/storage"
)

func TestPartyIndex_AppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewPartyIndex(storage.KindPayment, "customer")

	for _, id := range []uint64{7, 3, 9} {
		require.NoError(t, idx.Append(ctx, s, "GCUSTOMER", id))
	}

	count, err := idx.Count(ctx, s, "GCUSTOMER")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	ids, err := idx.Page(ctx, s, "GCUSTOMER", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 3, 9}, ids)
}

func TestPartyIndex_PartiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewPartyIndex(storage.KindPayment, "merchant")

	require.NoError(t, idx.Append(ctx, s, "GALICE", 1))
	require.NoError(t, idx.Append(ctx, s, "GBOB", 2))
	require.NoError(t, idx.Append(ctx, s, "GALICE", 3))

	alice, err := idx.Page(ctx, s, "GALICE", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, alice)

	bob, err := idx.Page(ctx, s, "GBOB", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, bob)

	none, err := idx.Count(ctx, s, "GCAROL")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), none)
}

func TestPartyIndex_Pagination(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	idx := NewPartyIndex(storage.KindRefund, "payment")

	for id := uint64(1); id <= 5; id++ {
		require.NoError(t, idx.Append(ctx, s, "42", id))
	}

	page, err := idx.Page(ctx, s, "42", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, page)

	page, err = idx.Page(ctx, s, "42", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, page)

	// Final page is shorter than the limit.
	page, err = idx.Page(ctx, s, "42", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, page)

	page, err = idx.Page(ctx, s, "42", 2, 5)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = idx.Page(ctx, s, "42", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}
