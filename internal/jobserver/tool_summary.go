package jobserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
	"github.com/anatolykoptev/go_apply/internal/toolutil"
)

// ApplicationSummaryInput is the (empty) input for application_summary.
type ApplicationSummaryInput struct{}

// summaryCacheKey keys the cached pipeline summary. Shared with the mutating
// tools, which invalidate it after every transition.
func summaryCacheKey() string { return engine.CacheKey("application_summary") }

// invalidateSummary drops the cached summary after a pipeline mutation.
func invalidateSummary(ctx context.Context) { engine.CacheInvalidate(ctx, summaryCacheKey()) }

func registerApplicationSummary(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "application_summary",
		Description: "Aggregate the whole pipeline into outcome buckets: total jobs, successes (confirmed/applied/interview), failures (discarded/rejected), and unknown, plus a per-status breakdown.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ ApplicationSummaryInput) (*mcp.CallToolResult, *jobs.ApplicationSummary, error) {
		store := jobs.GetStore()
		if store == nil {
			return nil, nil, errors.New("pipeline store is not initialized")
		}
		if cached, ok := toolutil.CacheLoadJSON[jobs.ApplicationSummary](ctx, summaryCacheKey()); ok {
			return nil, &cached, nil
		}
		summary, err := jobs.Summarize(ctx, store)
		if err != nil {
			return nil, nil, err
		}
		toolutil.CacheStoreJSON(ctx, summaryCacheKey(), *summary)
		return nil, summary, nil
	})
}
