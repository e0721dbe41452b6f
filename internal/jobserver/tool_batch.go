package jobserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
	"github.com/anatolykoptev/go_apply/internal/toolutil"
)

// BatchRunInput is the input for batch_run.
type BatchRunInput struct {
	Postings []jobs.JobPosting `json:"postings" jsonschema:"job postings to score and process"`
}

// BatchEventsInput is the input for batch_events.
type BatchEventsInput struct {
	AfterSeq int64 `json:"after_seq,omitempty" jsonschema:"return only events with a sequence number greater than this"`
	Limit    int   `json:"limit,omitempty" jsonschema:"maximum events to return, default 100, max 500; the newest are kept"`
}

// tailEvents keeps the newest limit events. Polling clients resume from
// LastSeq, so dropping the oldest loses nothing.
func tailEvents(events []engine.Event, limit int) []engine.Event {
	if len(events) > limit {
		return events[len(events)-limit:]
	}
	return events
}

// BatchEventsResult is the output of batch_events.
type BatchEventsResult struct {
	Events  []engine.Event `json:"events"`
	LastSeq int64          `json:"last_seq"`
}

func registerBatchRun(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_run",
		Description: "Score a batch of job postings against the candidate profile; postings that clear the threshold get a tailored resume requested and a pending pipeline record created. One posting failing does not abort the batch.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchRunInput) (*mcp.CallToolResult, *jobs.BatchResult, error) {
		if len(input.Postings) == 0 {
			return nil, nil, errors.New("postings are required")
		}
		batch := jobs.GetBatch()
		if batch == nil {
			return nil, nil, errors.New("batch runner is not initialized")
		}
		profile := jobs.GetProfile()
		if profile == nil {
			return nil, nil, errors.New("no candidate profile uploaded yet; call resume_upload first")
		}
		var result *jobs.BatchResult
		err := engine.TrackOperation(ctx, "batch_run", func(ctx context.Context) error {
			var err error
			result, err = batch.Run(ctx, input.Postings, profile)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		invalidateSummary(ctx)
		return nil, result, nil
	})
}

func registerBatchEvents(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_events",
		Description: "Return recent engine progress events (scores, tailoring failures, batch milestones) after a given sequence number. Poll this during long batch runs.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input BatchEventsInput) (*mcp.CallToolResult, *BatchEventsResult, error) {
		events := tailEvents(engine.Events.Since(input.AfterSeq), toolutil.ClampLimit(input.Limit, 100, 500))
		result := &BatchEventsResult{Events: events}
		if n := len(events); n > 0 {
			result.LastSeq = events[n-1].Seq
		} else {
			result.LastSeq = input.AfterSeq
		}
		return nil, result, nil
	})
}
