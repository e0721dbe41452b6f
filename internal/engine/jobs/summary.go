package jobs

import (
	"context"
	"strings"
)

// Status keyword sets for bucketing historical records whose status values
// predate the current state machine. Matching is case-insensitive substring.
var (
	successKeywords = []string{"confirmed", "applied", "interview", "offer", "accepted", "submitted", "success", "succeeded"}
	failureKeywords = []string{"discarded", "failed", "error", "rejected", "declined", "cancelled", "withdrawn", "closed"}
)

// SummaryBucket classifies a raw status string into success, failure or
// unknown.
type SummaryBucket string

const (
	BucketSuccess SummaryBucket = "success"
	BucketFailure SummaryBucket = "failure"
	BucketUnknown SummaryBucket = "unknown"
)

// bucketFor maps a status to its summary bucket.
func bucketFor(status Status) SummaryBucket {
	s := strings.ToLower(strings.TrimSpace(string(status)))
	for _, kw := range failureKeywords {
		if strings.Contains(s, kw) {
			return BucketFailure
		}
	}
	for _, kw := range successKeywords {
		if strings.Contains(s, kw) {
			return BucketSuccess
		}
	}
	return BucketUnknown
}

// ApplicationSummary aggregates the pipeline into outcome buckets. Pending
// records are in flight and counted as unknown alongside unparseable
// statuses.
type ApplicationSummary struct {
	TotalJobs int `json:"total_jobs"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	Unknown   int `json:"unknown"`

	ByStatus map[string]int `json:"by_status"`
}

// Summarize reads every record in the store and buckets it.
func Summarize(ctx context.Context, store Store) (*ApplicationSummary, error) {
	records, err := store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ApplicationSummary{ByStatus: make(map[string]int)}
	for _, rec := range records {
		summary.TotalJobs++
		summary.ByStatus[string(rec.Status)]++
		switch bucketFor(rec.Status) {
		case BucketSuccess:
			summary.Successes++
		case BucketFailure:
			summary.Failures++
		default:
			summary.Unknown++
		}
	}
	return summary, nil
}
