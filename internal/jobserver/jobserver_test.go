package jobserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
	"github.com/anatolykoptev/go_apply/internal/toolutil"
)

func TestScoreCacheKeyUsesFullDescription(t *testing.T) {
	common := strings.Repeat("supply chain procurement logistics ", 32)
	a := ATSScoreInput{JobID: "job-1", Title: "Manager", Company: "Globex", Description: common + "sap erp"}
	b := ATSScoreInput{JobID: "job-1", Title: "Manager", Company: "Globex", Description: common + "oracle scm"}

	if scoreCacheKey(a, "stamp") == scoreCacheKey(b, "stamp") {
		t.Error("postings differing only deep in the description share a cache key")
	}
	if scoreCacheKey(a, "stamp") != scoreCacheKey(a, "stamp") {
		t.Error("same input produced different keys")
	}
	if scoreCacheKey(a, "stamp") == scoreCacheKey(a, "stamp2") {
		t.Error("profile revision not part of the key")
	}
}

func TestSummaryCacheInvalidation(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	toolutil.CacheStoreJSON(ctx, summaryCacheKey(), jobs.ApplicationSummary{TotalJobs: 3})
	if _, ok := toolutil.CacheLoadJSON[jobs.ApplicationSummary](ctx, summaryCacheKey()); !ok {
		t.Fatal("expected cached summary")
	}

	invalidateSummary(ctx)
	if _, ok := toolutil.CacheLoadJSON[jobs.ApplicationSummary](ctx, summaryCacheKey()); ok {
		t.Error("summary still cached after a pipeline mutation")
	}
}

func TestTailEvents(t *testing.T) {
	events := make([]engine.Event, 8)
	for i := range events {
		events[i] = engine.Event{Seq: int64(i + 1)}
	}

	tail := tailEvents(events, 3)
	if len(tail) != 3 {
		t.Fatalf("len = %d, want 3", len(tail))
	}
	if tail[0].Seq != 6 || tail[2].Seq != 8 {
		t.Errorf("kept seqs %d..%d, want the newest 6..8", tail[0].Seq, tail[2].Seq)
	}

	if got := tailEvents(events, 20); len(got) != 8 {
		t.Errorf("len = %d, want all 8 when under the limit", len(got))
	}
}
