package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// BatchItem is the per-posting outcome of a batch run.
type BatchItem struct {
	JobID      string   `json:"job_id"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	FinalScore float64  `json:"final_score"`
	Decision   Decision `json:"decision"`
	Tailored   bool     `json:"tailored"`
	Error      string   `json:"error,omitempty"`
}

// BatchResult summarizes one batch run over a set of postings.
type BatchResult struct {
	BatchID   string      `json:"batch_id"`
	StartedAt time.Time   `json:"started_at"`
	Duration  string      `json:"duration"`
	Total     int         `json:"total"`
	Tailored  int         `json:"tailored"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
}

// Batch scores postings concurrently and drives tailoring plus pending-record
// creation for the ones that clear the threshold. Scoring is parallel across
// workers; tailoring is rate limited to protect the downstream service.
type Batch struct {
	pipeline *Pipeline
	tailor   Tailor
	rules    RuleConfig
	workers  int
	limiter  *rate.Limiter
}

// NewBatch creates a batch runner. workers caps scoring concurrency; rps caps
// tailoring throughput.
func NewBatch(pipeline *Pipeline, tailor Tailor, rules RuleConfig, workers int, rps float64) *Batch {
	if workers <= 0 {
		workers = 4
	}
	if rps <= 0 {
		rps = 1
	}
	return &Batch{
		pipeline: pipeline,
		tailor:   tailor,
		rules:    rules,
		workers:  workers,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Run processes postings through score, tailor and record creation. One
// posting failing never aborts the batch; context cancellation does, between
// postings. Postings without an id get a generated one.
func (b *Batch) Run(ctx context.Context, postings []JobPosting, profile *CandidateProfile) (*BatchResult, error) {
	start := time.Now().UTC()
	result := &BatchResult{
		BatchID:   uuid.NewString(),
		StartedAt: start,
		Total:     len(postings),
		Items:     make([]BatchItem, len(postings)),
	}

	engine.Events.Append("batch_start", fmt.Sprintf("scoring %d postings", len(postings)),
		map[string]string{"batch_id": result.BatchID})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, posting := range postings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i, posting := i, posting
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := b.process(gctx, posting, profile)
			mu.Lock()
			result.Items[i] = item
			switch {
			case item.Error != "":
				result.Failed++
			case item.Tailored:
				result.Tailored++
			default:
				result.Skipped++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start).Round(time.Millisecond).String()
	engine.Events.Append("batch_done",
		fmt.Sprintf("tailored %d, skipped %d, failed %d", result.Tailored, result.Skipped, result.Failed),
		map[string]string{"batch_id": result.BatchID})

	slog.Info("batch complete",
		slog.String("batch_id", result.BatchID),
		slog.Int("total", result.Total),
		slog.Int("tailored", result.Tailored),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// process scores one posting and, on a tailor decision, requests artifacts
// and registers the pending record.
func (b *Batch) process(ctx context.Context, posting JobPosting, profile *CandidateProfile) BatchItem {
	if posting.ID == "" {
		posting.ID = uuid.NewString()
	}

	item := BatchItem{JobID: posting.ID, Title: posting.Title, Company: posting.Company}

	score := Score(posting, profile, b.rules.Scoring)
	engine.IncrPostingsScored()
	item.FinalScore = score.FinalScore
	item.Decision = score.Decision

	engine.Events.Append("posting_scored",
		fmt.Sprintf("%s at %s scored %.1f", posting.Title, posting.Company, score.FinalScore),
		map[string]string{"job_id": posting.ID, "decision": string(score.Decision)})

	if score.Decision != DecisionTailor {
		return item
	}

	var resumePath, highlightsPath string
	if b.tailor != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			item.Error = err.Error()
			return item
		}
		tr, err := b.tailor.Tailor(ctx, posting, profile)
		if err != nil {
			item.Error = fmt.Sprintf("tailor: %v", err)
			engine.Events.Append("tailor_failed", item.Error, map[string]string{"job_id": posting.ID})
			return item
		}
		resumePath, highlightsPath = tr.ResumeVariantPath, tr.HighlightsPath
	}

	if _, err := b.pipeline.CreatePending(ctx, posting, score.FinalScore, resumePath, highlightsPath); err != nil {
		item.Error = fmt.Sprintf("create record: %v", err)
		return item
	}
	item.Tailored = true
	return item
}

// Package-level batch runner, set from main.
var activeBatch *Batch

// SetBatch installs the process-wide batch runner.
func SetBatch(b *Batch) { activeBatch = b }

// GetBatch returns the installed batch runner (may be nil).
func GetBatch() *Batch { return activeBatch }
