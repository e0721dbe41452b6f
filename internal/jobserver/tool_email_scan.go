package jobserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
)

// EmailScanInput is the input for email_scan.
type EmailScanInput struct {
	Hours int `json:"hours,omitempty" jsonschema:"lookback window in hours, default 48"`
}

// ScanReportInput is the (empty) input for scan_report.
type ScanReportInput struct{}

func registerEmailScan(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "email_scan",
		Description: "Scan the inbox for application-related emails: classify each message (interview, recruiter, rejection, other), match it to a pending application, and apply the resulting pipeline transition. Writes a scan report and returns it.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input EmailScanInput) (*mcp.CallToolResult, *jobs.ScanReport, error) {
		scanner := jobs.GetScanner()
		if scanner == nil {
			return nil, nil, errors.New("inbox scanner is not configured")
		}
		var report *jobs.ScanReport
		err := engine.TrackOperation(ctx, "email_scan", func(ctx context.Context) error {
			var err error
			report, err = scanner.Scan(ctx, input.Hours)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		invalidateSummary(ctx)
		return nil, report, nil
	})
}

func registerScanReport(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_report",
		Description: "Return the most recent email scan report without running a new scan.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ ScanReportInput) (*mcp.CallToolResult, *jobs.ScanReport, error) {
		report, err := jobs.LoadLatestReport(engine.Cfg.ReportsDir)
		if err != nil {
			return nil, nil, err
		}
		return nil, report, nil
	})
}
