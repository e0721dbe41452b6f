package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// ArtifactStore applies artifact side effects of pipeline transitions.
// The tailored artifacts themselves are opaque to the engine.
type ArtifactStore interface {
	// Lock marks a freshly tailored resume as not yet retrievable.
	Lock(ctx context.Context, rec *JobApplicationRecord) error
	// Unlock makes the record's tailored resume and highlights retrievable.
	Unlock(ctx context.Context, rec *JobApplicationRecord) error
	// DeleteResume removes a tailored resume artifact.
	DeleteResume(ctx context.Context, path string) error
}

// TransitionResult reports the outcome of one state-machine transition.
// Applied=false is the no-op signal: the record was not pending (or already
// carried the requested status), which callers must be able to tell apart
// from a successful transition.
type TransitionResult struct {
	JobID   string `json:"job_id"`
	Status  Status `json:"status"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// Pipeline owns the per-job lifecycle state machine. It is the only writer of
// job-application records: every mutation funnels through a transition here.
type Pipeline struct {
	store     Store
	artifacts ArtifactStore
}

// NewPipeline creates a state machine over the given store and artifact store.
func NewPipeline(store Store, artifacts ArtifactStore) *Pipeline {
	return &Pipeline{store: store, artifacts: artifacts}
}

// CreatePending registers a posting that cleared the ATS threshold and
// lock-marks its tailored resume, so it stays unretrievable until Confirm.
// Re-creating an existing job id is a no-op returning the stored record, so a
// re-run batch cannot reset an already-settled application.
func (p *Pipeline) CreatePending(ctx context.Context, posting JobPosting, score float64, resumePath, highlightsPath string) (*JobApplicationRecord, error) {
	if posting.ID == "" {
		return nil, errors.New("pipeline: posting id is required")
	}
	if existing, err := p.store.Get(ctx, posting.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &JobApplicationRecord{
		JobID:             posting.ID,
		Title:             posting.Title,
		Company:           posting.Company,
		Status:            StatusPending,
		ATSScore:          score,
		ResumeVariantPath: resumePath,
		HighlightsPath:    highlightsPath,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.artifacts != nil && rec.ResumeVariantPath != "" {
		if err := p.artifacts.Lock(ctx, rec); err != nil {
			slog.Warn("pipeline: artifact lock failed",
				slog.String("job_id", rec.JobID), slog.Any("error", err))
		}
	}
	if err := p.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("pipeline: create %s: %w", posting.ID, err)
	}
	engine.IncrRecordsCreated()
	return rec, nil
}

// Confirm moves a pending record to confirmed and unlocks its artifacts.
// Triggered by explicit user action or an interview/recruiter classification.
func (p *Pipeline) Confirm(ctx context.Context, jobID string) (*TransitionResult, error) {
	return p.transition(ctx, jobID, StatusConfirmed, func(ctx context.Context, rec *JobApplicationRecord) {
		if p.artifacts == nil {
			return
		}
		if err := p.artifacts.Unlock(ctx, rec); err != nil {
			slog.Warn("pipeline: artifact unlock failed",
				slog.String("job_id", rec.JobID), slog.Any("error", err))
		}
	})
}

// Discard moves a pending record to discarded, deletes the tailored resume
// artifact and clears its reference. The highlights and the normalized
// profile are kept for audit.
func (p *Pipeline) Discard(ctx context.Context, jobID string) (*TransitionResult, error) {
	return p.transition(ctx, jobID, StatusDiscarded, func(ctx context.Context, rec *JobApplicationRecord) {
		if rec.ResumeVariantPath == "" {
			return
		}
		if p.artifacts != nil {
			if err := p.artifacts.DeleteResume(ctx, rec.ResumeVariantPath); err != nil {
				slog.Warn("pipeline: artifact delete failed",
					slog.String("job_id", rec.JobID), slog.Any("error", err))
			}
		}
		rec.ResumeVariantPath = ""
	})
}

// MarkApplied records the external "batch completed application" signal.
// Legal from pending or confirmed; independent of email-driven transitions.
func (p *Pipeline) MarkApplied(ctx context.Context, jobID string) (*TransitionResult, error) {
	rec, err := p.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch rec.Status {
	case StatusApplied:
		engine.IncrTransitionsNoOp()
		return &TransitionResult{JobID: jobID, Status: rec.Status, Reason: "already applied"}, nil
	case StatusDiscarded:
		engine.IncrTransitionsNoOp()
		return &TransitionResult{JobID: jobID, Status: rec.Status, Reason: "record is discarded"}, nil
	}

	rec.Status = StatusApplied
	rec.UpdatedAt = time.Now().UTC()
	if err := p.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("pipeline: mark applied %s: %w", jobID, err)
	}
	engine.IncrTransitionsApplied()
	return &TransitionResult{JobID: jobID, Status: StatusApplied, Applied: true}, nil
}

// ApplyClassification drives the email-driven transition for a matched job:
// interview/recruiter confirm it, rejection discards it, other is a no-op.
// Terminal records are never touched by this path.
func (p *Pipeline) ApplyClassification(ctx context.Context, class ClassificationResult, jobID string) (*TransitionResult, error) {
	switch class.Category {
	case CategoryInterview, CategoryRecruiter:
		return p.Confirm(ctx, jobID)
	case CategoryRejection:
		return p.Discard(ctx, jobID)
	}
	rec, err := p.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	engine.IncrTransitionsNoOp()
	return &TransitionResult{JobID: jobID, Status: rec.Status, Reason: "category drives no transition"}, nil
}

// transition applies target to a pending record, running sideEffect (which
// may mutate the record) before persisting. Non-pending records yield the
// no-op signal; re-applying the record's current status is a safe no-op too.
func (p *Pipeline) transition(ctx context.Context, jobID string, target Status, sideEffect func(context.Context, *JobApplicationRecord)) (*TransitionResult, error) {
	rec, err := p.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if rec.Status != StatusPending {
		engine.IncrTransitionsNoOp()
		reason := fmt.Sprintf("record is %s", rec.Status)
		if rec.Status == target {
			reason = fmt.Sprintf("already %s", target)
		}
		return &TransitionResult{JobID: jobID, Status: rec.Status, Reason: reason}, nil
	}

	if sideEffect != nil {
		sideEffect(ctx, rec)
	}
	rec.Status = target
	rec.UpdatedAt = time.Now().UTC()
	if err := p.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("pipeline: transition %s to %s: %w", jobID, target, err)
	}

	engine.IncrTransitionsApplied()
	slog.Info("pipeline: transition applied",
		slog.String("job_id", jobID), slog.String("status", string(target)))
	return &TransitionResult{JobID: jobID, Status: target, Applied: true}, nil
}

// Package-level pipeline, set from main.
var activePipeline *Pipeline

// SetPipeline installs the process-wide state machine instance.
func SetPipeline(p *Pipeline) { activePipeline = p }

// GetPipeline returns the installed state machine (may be nil).
func GetPipeline() *Pipeline { return activePipeline }
