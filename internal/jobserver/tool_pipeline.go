package jobserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
	"github.com/anatolykoptev/go_apply/internal/toolutil"
)

// PipelineTransitionInput identifies the record for a state transition.
type PipelineTransitionInput struct {
	JobID string `json:"job_id" jsonschema:"id of the job application record"`
}

// PipelineListInput is the input for pipeline_list.
type PipelineListInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status: pending, confirmed, discarded, applied; empty lists everything"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum records to return, default 50, max 200"`
}

// PipelineListResult is the output of pipeline_list. Total counts every
// matching record even when Records is cut at the limit.
type PipelineListResult struct {
	Total   int                         `json:"total"`
	Records []jobs.JobApplicationRecord `json:"records"`
}

func pipelineFor() (*jobs.Pipeline, error) {
	p := jobs.GetPipeline()
	if p == nil {
		return nil, errors.New("pipeline is not initialized")
	}
	return p, nil
}

func registerPipelineConfirm(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_confirm",
		Description: "Confirm a pending job application: the tailored resume and highlights become retrievable. No-op with a reason if the record is not pending. Use after reviewing the posting or when a recruiter reaches out.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PipelineTransitionInput) (*mcp.CallToolResult, *jobs.TransitionResult, error) {
		if input.JobID == "" {
			return nil, nil, errors.New("job_id is required")
		}
		p, err := pipelineFor()
		if err != nil {
			return nil, nil, err
		}
		result, err := p.Confirm(ctx, input.JobID)
		if err != nil {
			return nil, nil, err
		}
		invalidateSummary(ctx)
		return nil, result, nil
	})
}

func registerPipelineReject(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_reject",
		Description: "Discard a pending job application: the tailored resume artifact is deleted and its reference cleared. Highlights are kept for audit. No-op with a reason if the record is not pending.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PipelineTransitionInput) (*mcp.CallToolResult, *jobs.TransitionResult, error) {
		if input.JobID == "" {
			return nil, nil, errors.New("job_id is required")
		}
		p, err := pipelineFor()
		if err != nil {
			return nil, nil, err
		}
		result, err := p.Discard(ctx, input.JobID)
		if err != nil {
			return nil, nil, err
		}
		invalidateSummary(ctx)
		return nil, result, nil
	})
}

func registerPipelineMarkApplied(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_mark_applied",
		Description: "Record that the application was actually submitted. Legal from pending or confirmed; repeating it is a safe no-op. Independent of email-driven transitions.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PipelineTransitionInput) (*mcp.CallToolResult, *jobs.TransitionResult, error) {
		if input.JobID == "" {
			return nil, nil, errors.New("job_id is required")
		}
		p, err := pipelineFor()
		if err != nil {
			return nil, nil, err
		}
		result, err := p.MarkApplied(ctx, input.JobID)
		if err != nil {
			return nil, nil, err
		}
		invalidateSummary(ctx)
		return nil, result, nil
	})
}

func registerPipelineList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_list",
		Description: "List job application records, newest first. Optionally filter by status: pending, confirmed, discarded, applied.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PipelineListInput) (*mcp.CallToolResult, *PipelineListResult, error) {
		store := jobs.GetStore()
		if store == nil {
			return nil, nil, errors.New("pipeline store is not initialized")
		}

		var (
			records []jobs.JobApplicationRecord
			err     error
		)
		status := strings.ToLower(strings.TrimSpace(input.Status))
		if status == "" {
			records, err = store.ListAll(ctx)
		} else {
			if !jobs.ValidStatus(status) {
				return nil, nil, errors.New("unknown status: " + status)
			}
			records, err = store.ListByStatus(ctx, jobs.Status(status))
		}
		if err != nil {
			return nil, nil, err
		}

		total := len(records)
		if limit := toolutil.ClampLimit(input.Limit, 50, 200); len(records) > limit {
			records = records[:limit]
		}
		return nil, &PipelineListResult{Total: total, Records: records}, nil
	})
}
