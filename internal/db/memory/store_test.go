package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/schemesearch/internal/db"
)

func TestStore_GetSet(t *testing.T) {
	s, err := NewStore(2, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "a"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	val := []byte{1, 2, 3}
	if err := s.Set(ctx, "a", val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val[0] = 9 // caller mutation must not leak into the store

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got[0] != 1 {
		t.Errorf("stored value was aliased: %v", got)
	}
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, _ := NewStore(2, 0)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("a"))
	_ = s.Set(ctx, "b", []byte("b"))
	_, _ = s.Get(ctx, "a")
	_ = s.Set(ctx, "c", []byte("c"))

	if _, err := s.Get(ctx, "b"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Error("expected b to be evicted")
	}
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Error("expected a to survive")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Len())
	}
}

func TestStore_Expiry(t *testing.T) {
	s, _ := NewStore(4, 20*time.Millisecond)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("a"))
	time.Sleep(60 * time.Millisecond)

	if _, err := s.Get(ctx, "a"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Error("expected a to expire")
	}
}

func TestNewStore_InvalidSize(t *testing.T) {
	if _, err := NewStore(0, 0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestStore_CloseAndPing(t *testing.T) {
	s, _ := NewStore(2, 0)
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("a"))

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	s.Close()
	if s.Len() != 0 {
		t.Error("expected empty store after Close")
	}
}
