package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := NewMemory()
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "pages:index", "cached body", 20*time.Second); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := store.Get(ctx, "pages:index")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != "cached body" {
		t.Errorf("Get() = %q, want %q", got, "cached body")
	}

	// Just inside the window the entry is still served
	now = now.Add(19 * time.Second)
	if _, err := store.Get(ctx, "pages:index"); err != nil {
		t.Errorf("Get() inside TTL window errored: %v", err)
	}

	// Past the window it reads as a miss
	now = now.Add(2 * time.Second)
	if _, err := store.Get(ctx, "pages:index"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryMissAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() on absent key = %v, want ErrCacheMiss", err)
	}

	if err := store.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after delete = %v, want ErrCacheMiss", err)
	}
}
