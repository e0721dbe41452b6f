package toolutil

import (
	"context"
	"testing"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestCacheJSONRoundtrip(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	key := engine.CacheKey("toolutil", "roundtrip")
	CacheStoreJSON(ctx, key, payload{Name: "job-1", Score: 72})

	got, ok := CacheLoadJSON[payload](ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Name != "job-1" || got.Score != 72 {
		t.Errorf("got %+v, want stored payload", got)
	}
}

func TestCacheLoadJSONMiss(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	if _, ok := CacheLoadJSON[payload](context.Background(), engine.CacheKey("toolutil", "absent")); ok {
		t.Error("unexpected hit")
	}
}

func TestCacheLoadJSONDecodeError(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	key := engine.CacheKey("toolutil", "garbage")
	engine.CacheSet(ctx, key, []byte("not json"))
	if _, ok := CacheLoadJSON[payload](ctx, key); ok {
		t.Error("expected miss for undecodable payload")
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, def, max, want int
	}{
		{0, 10, 50, 10},
		{-5, 10, 50, 10},
		{25, 10, 50, 25},
		{100, 10, 50, 50},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.limit, tt.def, tt.max); got != tt.want {
			t.Errorf("ClampLimit(%d, %d, %d) = %d, want %d", tt.limit, tt.def, tt.max, got, tt.want)
		}
	}
}
