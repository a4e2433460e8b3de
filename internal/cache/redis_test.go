package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/quillhub/quill/pkg/config"
)

func newRedisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedis(&config.RedisConfig{URL: "redis://" + mr.Addr(), Enabled: true})
	if err != nil {
		t.Fatalf("NewRedis() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

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
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	if err := store.Set(ctx, "pages:index", "cached body", 20*time.Second); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	mr.FastForward(21 * time.Second)

	if _, err := store.Get(ctx, "pages:index"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestRedisMissAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

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
