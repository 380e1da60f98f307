// Package memory implements db.Store as a bounded in-process LRU.
package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/schemesearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store is an LRU key-value store with optional expiry. Safe for concurrent use.
type Store struct {
	lru *expirable.LRU[string, []byte]
}

// NewStore creates a store holding at most size entries. ttl <= 0 disables expiry.
func NewStore(size int, ttl time.Duration) (*Store, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Store{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}, nil
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.lru.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value, evicting the least recently used entry when full.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, slices.Clone(value))
	return nil
}

// Len returns the number of live entries.
func (s *Store) Len() int { return s.lru.Len() }

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Close drops all entries.
func (s *Store) Close() { s.lru.Purge() }
