// Package kv stores opaque blobs by key. Backends differ only in how long a
// blob lives: Memory for the current process, SQLStore durably, RedisStore
// durably or with a sliding expiry.
package kv

import "context"

// Store is a key-value blob backend. Get reports ok=false for a missing key.
// Failures match storage.ErrUnavailable.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
