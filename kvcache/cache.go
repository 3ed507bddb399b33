// Package kvcache defines the key-value cache the catalog keeps derived snapshots in.
package kvcache

import "context"

// Cache stores opaque values without expiry.
// Get returns errors.ErrCacheMiss when the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
