package storage

import (
	"context"
	"errors"
)

// Error constants for the storage layer. Backends wrap the underlying driver
// error with one of these so callers can classify write failures.
var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
)

// KeyValueStore is the byte store sessions and preferences are kept in.
type KeyValueStore interface {
	// Get returns the value stored under key. ok is false if the key is absent,
	// which is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set replaces the value stored under key in a single write.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
