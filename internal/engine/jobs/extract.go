package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TextExtractor pulls plain text out of a binary document (PDF, DOCX, RTF).
// The conversion tool lives outside the engine; only the resulting text
// crosses this boundary.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, format string) (string, error)
}

// structuredResume is the shape accepted for YAML/JSON resume uploads.
// Unknown fields are ignored; everything present is flattened into text and
// run through the same normalization as any other upload.
type structuredResume struct {
	Name      string   `json:"name" yaml:"name"`
	Summary   string   `json:"summary" yaml:"summary"`
	Skills    []string `json:"skills" yaml:"skills"`
	Positions []string `json:"positions" yaml:"positions"`
	Experience []struct {
		Title       string   `json:"title" yaml:"title"`
		Company     string   `json:"company" yaml:"company"`
		Description string   `json:"description" yaml:"description"`
		Highlights  []string `json:"highlights" yaml:"highlights"`
	} `json:"experience" yaml:"experience"`
}

// flatten renders the structured resume as markdown-ish text for keyword
// extraction.
func (r *structuredResume) flatten() string {
	var b strings.Builder
	if r.Name != "" {
		fmt.Fprintf(&b, "# %s\n\n", r.Name)
	}
	if r.Summary != "" {
		b.WriteString(r.Summary + "\n\n")
	}
	if len(r.Skills) > 0 {
		b.WriteString("Skills: " + strings.Join(r.Skills, ", ") + "\n\n")
	}
	for _, pos := range r.Positions {
		b.WriteString(pos + "\n")
	}
	for _, exp := range r.Experience {
		fmt.Fprintf(&b, "\n%s at %s\n", exp.Title, exp.Company)
		if exp.Description != "" {
			b.WriteString(exp.Description + "\n")
		}
		for _, h := range exp.Highlights {
			b.WriteString("- " + h + "\n")
		}
	}
	return b.String()
}

// binaryFormats are upload formats that need an external text extractor.
var binaryFormats = map[string]bool{"pdf": true, "docx": true, "rtf": true}

// ExtractResumeText converts an uploaded resume of any supported format into
// plain text ready for NormalizeProfile. The format is the lowercase file
// extension without the dot; when empty it is taken from filename.
func ExtractResumeText(ctx context.Context, data []byte, filename, format string, extractor TextExtractor) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(filename), ".")
	}
	format = strings.ToLower(format)

	switch {
	case binaryFormats[format]:
		if extractor == nil {
			return "", fmt.Errorf("%w: no extractor for %s", ErrProfileExtraction, format)
		}
		text, err := extractor.ExtractText(ctx, data, format)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrProfileExtraction, format, err)
		}
		return text, nil

	case format == "json":
		var resume structuredResume
		if err := json.Unmarshal(data, &resume); err != nil {
			return "", fmt.Errorf("%w: invalid json: %v", ErrProfileExtraction, err)
		}
		return resume.flatten(), nil

	case format == "yaml" || format == "yml":
		var resume structuredResume
		if err := yaml.Unmarshal(data, &resume); err != nil {
			return "", fmt.Errorf("%w: invalid yaml: %v", ErrProfileExtraction, err)
		}
		return resume.flatten(), nil

	default:
		// txt, md, html and anything else textual goes straight through;
		// NormalizeDocument handles HTML downstream.
		return string(data), nil
	}
}

// Package-level binary text extractor, set from main when a conversion tool
// is available. Nil means binary uploads are rejected.
var activeExtractor TextExtractor

// SetTextExtractor installs the process-wide binary document extractor.
func SetTextExtractor(e TextExtractor) { activeExtractor = e }

// GetTextExtractor returns the installed extractor (may be nil).
func GetTextExtractor() TextExtractor { return activeExtractor }
