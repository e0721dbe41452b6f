package jobserver

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
)

// ResumeUploadInput is the input for resume_upload. Text uploads go in
// content; binary formats (pdf, docx, rtf) go base64-encoded in content_b64.
type ResumeUploadInput struct {
	Filename   string `json:"filename,omitempty" jsonschema:"original filename, used to infer format"`
	Format     string `json:"format,omitempty" jsonschema:"explicit format: txt, md, html, json, yaml, pdf, docx, rtf"`
	Content    string `json:"content,omitempty" jsonschema:"resume content for text formats"`
	ContentB64 string `json:"content_b64,omitempty" jsonschema:"base64-encoded content for binary formats"`
}

// ResumeUploadResult is the output of resume_upload.
type ResumeUploadResult struct {
	Skills    int    `json:"skills"`
	Positions int    `json:"positions"`
	Chars     int    `json:"chars"`
	ArchiveID int64  `json:"archive_id,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// ResumeProfileInput is the (empty) input for resume_profile.
type ResumeProfileInput struct{}

func registerResumeUpload(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_upload",
		Description: "Upload a resume (txt, md, html, json, yaml, pdf, docx, rtf) and replace the candidate profile used for scoring. The document is normalized into a canonical profile; on extraction failure the previous profile is kept.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ResumeUploadInput) (*mcp.CallToolResult, *ResumeUploadResult, error) {
		var data []byte
		switch {
		case input.ContentB64 != "":
			decoded, err := base64.StdEncoding.DecodeString(input.ContentB64)
			if err != nil {
				return nil, nil, errors.New("content_b64 is not valid base64")
			}
			data = decoded
		case input.Content != "":
			data = []byte(input.Content)
		default:
			return nil, nil, errors.New("content or content_b64 is required")
		}

		text, err := jobs.ExtractResumeText(ctx, data, input.Filename, input.Format, jobs.GetTextExtractor())
		if err != nil {
			return nil, nil, err
		}
		profile, err := jobs.NormalizeProfile(text)
		if err != nil {
			return nil, nil, err
		}
		if err := jobs.SetProfile(profile); err != nil {
			return nil, nil, err
		}

		result := &ResumeUploadResult{
			Skills:    len(profile.Skills),
			Positions: len(profile.Positions),
			Chars:     len(profile.RawText),
			UpdatedAt: profile.UpdatedAt.Format("2006-01-02 15:04:05"),
		}

		if db := jobs.GetProfileDB(); db != nil {
			id, err := db.SaveVersion(ctx, profile)
			if err != nil {
				slog.Warn("resume_upload: archive failed", slog.Any("error", err))
			} else {
				result.ArchiveID = id
			}
		}

		return nil, result, nil
	})
}

func registerResumeProfile(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_profile",
		Description: "Return the current candidate profile: extracted skills, detected positions, and when it was last uploaded.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ ResumeProfileInput) (*mcp.CallToolResult, *jobs.CandidateProfile, error) {
		profile := jobs.GetProfile()
		if profile == nil {
			return nil, nil, errors.New("no candidate profile uploaded yet")
		}
		return nil, profile, nil
	})
}
