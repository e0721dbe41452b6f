// Package jobserver exposes the application pipeline engine as MCP tools.
package jobserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all pipeline tools on the given MCP server:
// scoring, pipeline transitions, inbox scanning, profile management,
// tailored-artifact retrieval, summary and batch runs.
func RegisterTools(server *mcp.Server) {
	registerATSScore(server)

	registerPipelineConfirm(server)
	registerPipelineReject(server)
	registerPipelineMarkApplied(server)
	registerPipelineList(server)

	registerEmailScan(server)
	registerScanReport(server)

	registerResumeUpload(server)
	registerResumeProfile(server)

	registerTailoredResumes(server)
	registerTailoredResumePDF(server)
	registerTailoredResumeHighlights(server)

	registerApplicationSummary(server)

	registerBatchRun(server)
	registerBatchEvents(server)
}
