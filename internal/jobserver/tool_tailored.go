package jobserver

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
)

// TailoredResumesInput is the (empty) input for tailored_resumes.
type TailoredResumesInput struct{}

// TailoredArtifact is one retrievable tailored resume reference.
type TailoredArtifact struct {
	JobID             string  `json:"job_id"`
	Title             string  `json:"title"`
	Company           string  `json:"company"`
	ATSScore          float64 `json:"ats_score"`
	ResumeVariantPath string  `json:"resume_variant_path"`
	HighlightsPath    string  `json:"highlights_path,omitempty"`
}

// TailoredResumesResult is the output of tailored_resumes.
type TailoredResumesResult struct {
	Total     int                `json:"total"`
	Artifacts []TailoredArtifact `json:"artifacts"`
}

// TailoredArtifactInput identifies the record whose artifact to fetch.
type TailoredArtifactInput struct {
	JobID string `json:"job_id" jsonschema:"id of the confirmed job application"`
}

// TailoredResumePDFResult carries the tailored resume document.
type TailoredResumePDFResult struct {
	JobID      string `json:"job_id"`
	Path       string `json:"path"`
	ContentB64 string `json:"content_b64"`
}

// TailoredHighlightsResult carries the tailoring highlights text.
type TailoredHighlightsResult struct {
	JobID      string `json:"job_id"`
	Path       string `json:"path"`
	Highlights string `json:"highlights"`
}

func registerTailoredResumes(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tailored_resumes",
		Description: "List confirmed applications whose tailored resume is retrievable. Pending artifacts stay locked until the application is confirmed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ TailoredResumesInput) (*mcp.CallToolResult, *TailoredResumesResult, error) {
		store := jobs.GetStore()
		if store == nil {
			return nil, nil, errors.New("pipeline store is not initialized")
		}
		records, err := store.ListByStatus(ctx, jobs.StatusConfirmed)
		if err != nil {
			return nil, nil, err
		}

		result := &TailoredResumesResult{Artifacts: []TailoredArtifact{}}
		artifacts := jobs.GetArtifacts()
		for _, rec := range records {
			if rec.ResumeVariantPath == "" {
				continue
			}
			if artifacts != nil && artifacts.Locked(rec.ResumeVariantPath) {
				continue
			}
			result.Artifacts = append(result.Artifacts, TailoredArtifact{
				JobID:             rec.JobID,
				Title:             rec.Title,
				Company:           rec.Company,
				ATSScore:          rec.ATSScore,
				ResumeVariantPath: rec.ResumeVariantPath,
				HighlightsPath:    rec.HighlightsPath,
			})
		}
		result.Total = len(result.Artifacts)
		return nil, result, nil
	})
}

// confirmedArtifact loads the record and enforces the confirmed+unlocked rule.
func confirmedArtifact(ctx context.Context, jobID string) (*jobs.JobApplicationRecord, error) {
	if jobID == "" {
		return nil, errors.New("job_id is required")
	}
	store := jobs.GetStore()
	if store == nil {
		return nil, errors.New("pipeline store is not initialized")
	}
	rec, err := store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if rec.Status != jobs.StatusConfirmed && rec.Status != jobs.StatusApplied {
		return nil, errors.New("artifacts are only retrievable after the application is confirmed")
	}
	return rec, nil
}

func registerTailoredResumePDF(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tailored_resume_pdf",
		Description: "Fetch the tailored resume document for a confirmed application, base64-encoded. Fails for pending or discarded records.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TailoredArtifactInput) (*mcp.CallToolResult, *TailoredResumePDFResult, error) {
		rec, err := confirmedArtifact(ctx, input.JobID)
		if err != nil {
			return nil, nil, err
		}
		if rec.ResumeVariantPath == "" {
			return nil, nil, errors.New("no tailored resume for this application")
		}
		if a := jobs.GetArtifacts(); a != nil && a.Locked(rec.ResumeVariantPath) {
			return nil, nil, errors.New("tailored resume is still locked")
		}
		data, err := os.ReadFile(rec.ResumeVariantPath)
		if err != nil {
			return nil, nil, errors.New("tailored resume artifact is missing")
		}
		return nil, &TailoredResumePDFResult{
			JobID:      rec.JobID,
			Path:       rec.ResumeVariantPath,
			ContentB64: base64.StdEncoding.EncodeToString(data),
		}, nil
	})
}

func registerTailoredResumeHighlights(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tailored_resume_highlights",
		Description: "Fetch the tailoring highlights (what was emphasized and why) for a confirmed application.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TailoredArtifactInput) (*mcp.CallToolResult, *TailoredHighlightsResult, error) {
		rec, err := confirmedArtifact(ctx, input.JobID)
		if err != nil {
			return nil, nil, err
		}
		if rec.HighlightsPath == "" {
			return nil, nil, errors.New("no highlights for this application")
		}
		data, err := os.ReadFile(rec.HighlightsPath)
		if err != nil {
			return nil, nil, errors.New("highlights artifact is missing")
		}
		return nil, &TailoredHighlightsResult{
			JobID:      rec.JobID,
			Path:       rec.HighlightsPath,
			Highlights: string(data),
		}, nil
	})
}
