package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PostingsScored      atomic.Int64
	TailorRequests      atomic.Int64
	TailorErrors        atomic.Int64
	EmailsClassified    atomic.Int64
	ScansCompleted      atomic.Int64
	TransitionsApplied  atomic.Int64
	TransitionsNoOp     atomic.Int64
	RecordsCreated      atomic.Int64
	StoreWriteErrors    atomic.Int64
	ProfileUploads      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"postings_scored":     metrics.PostingsScored.Load(),
		"tailor_requests":     metrics.TailorRequests.Load(),
		"tailor_errors":       metrics.TailorErrors.Load(),
		"emails_classified":   metrics.EmailsClassified.Load(),
		"scans_completed":     metrics.ScansCompleted.Load(),
		"transitions_applied": metrics.TransitionsApplied.Load(),
		"transitions_noop":    metrics.TransitionsNoOp.Load(),
		"records_created":     metrics.RecordsCreated.Load(),
		"store_write_errors":  metrics.StoreWriteErrors.Load(),
		"profile_uploads":     metrics.ProfileUploads.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"postings_scored", "tailor_requests", "tailor_errors",
		"emails_classified", "scans_completed",
		"transitions_applied", "transitions_noop",
		"records_created", "store_write_errors", "profile_uploads",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the jobs sub-package.
func IncrPostingsScored()     { metrics.PostingsScored.Add(1) }
func IncrTailorRequests()     { metrics.TailorRequests.Add(1) }
func IncrTailorErrors()       { metrics.TailorErrors.Add(1) }
func IncrEmailsClassified()   { metrics.EmailsClassified.Add(1) }
func IncrScansCompleted()     { metrics.ScansCompleted.Add(1) }
func IncrTransitionsApplied() { metrics.TransitionsApplied.Add(1) }
func IncrTransitionsNoOp()    { metrics.TransitionsNoOp.Add(1) }
func IncrRecordsCreated()     { metrics.RecordsCreated.Add(1) }
func IncrStoreWriteErrors()   { metrics.StoreWriteErrors.Add(1) }
func IncrProfileUploads()     { metrics.ProfileUploads.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
