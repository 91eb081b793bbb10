package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	raw, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), raw)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_AtomicCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "stale", []byte("old")))

	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.Set(ctx, "a", []byte("1")); err != nil {
			return err
		}
		if err := tx.Delete(ctx, "stale"); err != nil {
			return err
		}

		// The transaction sees its own writes before commit.
		raw, ok, err := tx.Get(ctx, "a")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("1"), raw)

		_, ok, err = tx.Get(ctx, "stale")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	raw, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), raw)

	_, ok, err = s.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_AtomicRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "keep", []byte("original")))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.Set(ctx, "keep", []byte("clobbered")); err != nil {
			return err
		}
		if err := tx.Set(ctx, "new", []byte("x")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	raw, ok, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("original"), raw)

	_, ok, err = s.Get(ctx, "new")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_NestedAtomicJoins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	boom := errors.New("inner failure")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.Set(ctx, "outer", []byte("1")); err != nil {
			return err
		}
		// The nested scope joins the outer one, so its failure aborts both.
		return tx.Atomic(ctx, func(inner Store) error {
			if err := inner.Set(ctx, "inner", []byte("2")); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	_, ok, err := s.Get(ctx, "outer")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Get(ctx, "inner")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUint64Helpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Absent counters read as zero.
	v, err := GetUint64(ctx, s, "counter")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	// Lookup distinguishes absent from a stored zero.
	_, ok, err := LookupUint64(ctx, s, "counter")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetUint64(ctx, s, "counter", 0))
	v, ok, err = LookupUint64(ctx, s, "counter")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(0), v)

	require.NoError(t, SetUint64(ctx, s, "counter", 42))
	v, err = GetUint64(ctx, s, "counter")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	require.NoError(t, s.Set(ctx, "corrupt", []byte("not a number")))
	_, err = GetUint64(ctx, s, "corrupt")
	assert.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type record struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	var out record
	ok, err := GetJSON(ctx, s, "rec", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, "rec", record{Name: "x", N: 7}))
	ok, err = GetJSON(ctx, s, "rec", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record{Name: "x", N: 7}, out)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, Key("payment:3"), EntityKey(KindPayment, 3))
	assert.Equal(t, Key("refund:counter"), CounterKey(KindRefund))
	assert.Equal(t, Key("refund:status:REQUESTED:0"), StatusEntryKey(KindRefund, "REQUESTED", 0))
	assert.Equal(t, Key("payment:status_count:PENDING"), StatusCountKey(KindPayment, "PENDING"))
	assert.Equal(t, Key("payment:status_pos:9"), StatusPosKey(KindPayment, 9))
	assert.Equal(t, Key("refund:merchant:GMERCH:2"), PartyEntryKey(KindRefund, "merchant", "GMERCH", 2))
	assert.Equal(t, Key("payment:customer:GCUST:count"), PartyCountKey(KindPayment, "customer", "GCUST"))
	assert.Equal(t, Key("refund:processed_total:7"), ProcessedTotalKey(7))
	assert.Equal(t, Key("refund:admin"), AdminKey())
}
