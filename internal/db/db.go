// Package db defines the narrow storage contracts used by the embedding cache.
package db

import (
	"context"
	"time"
)

// Store is the facade a cache backend implements.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
// Expiry is a property of the store, not of individual writes.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
