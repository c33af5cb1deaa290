package storage

import (
	"context"
	"fmt"
)

// QuotaStore wraps a KeyValueStore and rejects writes whose value is larger
// than MaxBytes, the way device storage rejects oversized writes.
type QuotaStore struct {
	KeyValueStore
	MaxBytes int64
}

// WithQuota limits values written to store to maxBytes. A non-positive limit
// returns store unchanged.
func WithQuota(store KeyValueStore, maxBytes int64) KeyValueStore {
	if maxBytes <= 0 {
		return store
	}
	return &QuotaStore{KeyValueStore: store, MaxBytes: maxBytes}
}

// Set writes value if it fits within the quota.
func (q *QuotaStore) Set(ctx context.Context, key string, value []byte) error {
	if int64(len(value)) > q.MaxBytes {
		return fmt.Errorf("%w: %d bytes for key %q exceeds limit of %d", ErrQuotaExceeded, len(value), key, q.MaxBytes)
	}
	return q.KeyValueStore.Set(ctx, key, value)
}
