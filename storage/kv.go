// Package storage is the persistence boundary: history state is saved to
// and loaded from an external key-value store as compressed blobs. Loads
// recover through a three-tier fallback (primary, temp write, rotating
// backups) so a crash mid-save never loses more than one save.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("storage: key not found")

// KV is the minimal key-value contract the persistence layer needs.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns the keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
