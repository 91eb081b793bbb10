// Package storage provides the ledger's key-value persistence layer and its
// typed key space.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Store is the host key-value engine the ledger runs against. Every public
// ledger operation performs its reads and writes inside a single Atomic scope;
// a failed scope leaves the store untouched.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error

	// Atomic runs fn against a transactional view of the store. All writes made
	// through the view are applied together when fn returns nil and discarded
	// when fn returns an error. Nested calls join the enclosing transaction.
	Atomic(ctx context.Context, fn func(Store) error) error

	// Ping validates the backing store is reachable.
	Ping(ctx context.Context) error
}

// GetJSON reads and decodes a JSON-encoded value. The second return is false
// when the key is absent.
func GetJSON[T any](ctx context.Context, s Store, key Key, out *T) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode value at %s: %w", key, err)
	}
	return true, nil
}

// SetJSON JSON-encodes and stores a value.
func SetJSON(ctx context.Context, s Store, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// GetUint64 reads a counter-style value. Absent keys read as zero.
func GetUint64(ctx context.Context, s Store, key Key) (uint64, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter at %s: %w", key, err)
	}
	return v, nil
}

// LookupUint64 reads a numeric value, distinguishing an absent key from a
// stored zero.
func LookupUint64(ctx context.Context, s Store, key Key) (uint64, bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt counter at %s: %w", key, err)
	}
	return v, true, nil
}

// SetUint64 stores a counter-style value.
func SetUint64(ctx context.Context, s Store, key Key, v uint64) error {
	return s.Set(ctx, key, []byte(strconv.FormatUint(v, 10)))
}
