package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func initTestCache(t *testing.T, maxEntries int, ttl time.Duration) {
	t.Helper()
	InitCache("", ttl, maxEntries, time.Minute)
	t.Cleanup(func() { toolCache = nil })
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey("ats_score", "job-1", "globex")
	b := CacheKey("ats_score", "job-1", "globex")
	c := CacheKey("ats_score", "job-2", "globex")
	if a != b {
		t.Errorf("same parts produced different keys: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different parts produced the same key")
	}
	if len(a) != 27 { // "ga:" + 24 hex chars
		t.Errorf("key length = %d, want 27: %q", len(a), a)
	}
}

func TestCacheSetGet(t *testing.T) {
	initTestCache(t, 100, time.Minute)
	ctx := context.Background()

	key := CacheKey("test", "roundtrip")
	CacheSet(ctx, key, []byte(`{"v":1}`))

	data, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != `{"v":1}` {
		t.Errorf("data = %s, want original payload", data)
	}
}

func TestCacheMiss(t *testing.T) {
	initTestCache(t, 100, time.Minute)
	if _, ok := CacheGet(context.Background(), CacheKey("test", "absent")); ok {
		t.Error("unexpected hit for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	initTestCache(t, 100, 10*time.Millisecond)
	ctx := context.Background()

	key := CacheKey("test", "expiry")
	CacheSet(ctx, key, []byte("x"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected miss after TTL")
	}
}

func TestCacheInvalidate(t *testing.T) {
	initTestCache(t, 100, time.Minute)
	ctx := context.Background()

	key := CacheKey("test", "invalidate")
	CacheSet(ctx, key, []byte("x"))
	CacheInvalidate(ctx, key)

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestCacheEviction(t *testing.T) {
	initTestCache(t, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		CacheSet(ctx, CacheKey("test", fmt.Sprintf("k%d", i)), []byte("v"))
	}

	count := 0
	toolCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 5 {
		t.Errorf("L1 holds %d entries, want <= 5", count)
	}
}

func TestCacheUninitialized(t *testing.T) {
	toolCache = nil
	ctx := context.Background()
	CacheSet(ctx, "k", []byte("v")) // must not panic
	if _, ok := CacheGet(ctx, "k"); ok {
		t.Error("unexpected hit with no cache initialized")
	}
	CacheInvalidate(ctx, "k")
}
