package jobserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
	"github.com/anatolykoptev/go_apply/internal/toolutil"
)

// ATSScoreInput is the input for the ats_score tool.
type ATSScoreInput struct {
	JobID       string `json:"job_id,omitempty" jsonschema:"optional posting id, echoed into the result"`
	Title       string `json:"title,omitempty" jsonschema:"posting title"`
	Company     string `json:"company,omitempty" jsonschema:"company name"`
	Description string `json:"description" jsonschema:"full posting description, HTML or plain text"`
}

// scoreCacheKey keys a score by the full posting plus the profile revision.
// The full description goes in: CacheKey hashes its parts, and postings that
// share a prefix must not collide.
func scoreCacheKey(input ATSScoreInput, profileStamp string) string {
	return engine.CacheKey("ats_score",
		input.JobID, input.Title, input.Company, input.Description, profileStamp)
}

func registerATSScore(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ats_score",
		Description: "Score a job posting against the uploaded candidate profile. Returns base keyword-overlap score, domain alignment adjustment, final 0-100 score, matched phrases, and the tailor/skip decision. Deterministic: the same posting and profile always produce the same score.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ATSScoreInput) (*mcp.CallToolResult, jobs.ScoreResult, error) {
		if input.Description == "" {
			return nil, jobs.ScoreResult{}, errors.New("description is required")
		}
		profile := jobs.GetProfile()
		if profile == nil {
			return nil, jobs.ScoreResult{}, errors.New("no candidate profile uploaded yet; call resume_upload first")
		}

		posting := jobs.JobPosting{
			ID:          input.JobID,
			Title:       input.Title,
			Company:     input.Company,
			Description: input.Description,
		}

		cacheKey := scoreCacheKey(input, profile.UpdatedAt.String())
		if out, ok := toolutil.CacheLoadJSON[jobs.ScoreResult](ctx, cacheKey); ok {
			return nil, out, nil
		}

		result := jobs.Score(posting, profile, jobs.GetRules().Scoring)
		engine.IncrPostingsScored()

		toolutil.CacheStoreJSON(ctx, cacheKey, result)
		return nil, result, nil
	})
}
