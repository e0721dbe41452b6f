package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// TailorResult references the artifacts produced by the tailoring service.
// Both are opaque paths; the engine never inspects artifact content.
type TailorResult struct {
	ResumeVariantPath string `json:"resume_variant_path"`
	HighlightsPath    string `json:"highlights_path"`
}

// Tailor requests job-specific application materials for a posting.
// Implemented by the external tailoring service client; stubbed in tests.
type Tailor interface {
	Tailor(ctx context.Context, posting JobPosting, profile *CandidateProfile) (*TailorResult, error)
}

// TailorClient talks to the tailoring service HTTP API.
type TailorClient struct {
	baseURL string
	http    *http.Client
}

// NewTailorClient creates a tailoring service client.
func NewTailorClient(baseURL string, timeout time.Duration) *TailorClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TailorClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Tailor submits a posting and profile for rewriting. Retries transient
// failures with exponential backoff; 4xx responses are permanent.
func (c *TailorClient) Tailor(ctx context.Context, posting JobPosting, profile *CandidateProfile) (*TailorResult, error) {
	engine.IncrTailorRequests()

	payload, err := json.Marshal(map[string]any{
		"job_id":      posting.ID,
		"title":       posting.Title,
		"company":     posting.Company,
		"description": posting.Description,
		"profile":     profile,
	})
	if err != nil {
		return nil, fmt.Errorf("tailor: encode request: %w", err)
	}

	operation := func() (*TailorResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tailor", bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("tailor: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, backoff.Permanent(fmt.Errorf("tailor: status %d: %s", resp.StatusCode, string(b)))
		}

		var result TailorResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("tailor: decode response: %w", err))
		}
		return &result, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(2*time.Minute))
	if err != nil {
		engine.IncrTailorErrors()
		return nil, err
	}
	return result, nil
}

// LocalArtifacts implements ArtifactStore over a local directory shared with
// the tailoring service. A ".locked" marker next to the tailored resume keeps
// it unretrievable until the pipeline confirms the job.
type LocalArtifacts struct {
	dir string
}

// NewLocalArtifacts creates an artifact store rooted at dir.
func NewLocalArtifacts(dir string) (*LocalArtifacts, error) {
	if dir == "" {
		return nil, errors.New("artifacts: dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("artifacts: mkdir %s: %w", dir, err)
	}
	return &LocalArtifacts{dir: dir}, nil
}

// lockMarker is the lock file guarding an artifact path.
func lockMarker(path string) string { return path + ".locked" }

// Lock marks a freshly tailored resume as not yet retrievable.
func (a *LocalArtifacts) Lock(_ context.Context, rec *JobApplicationRecord) error {
	if rec.ResumeVariantPath == "" {
		return nil
	}
	return os.WriteFile(lockMarker(rec.ResumeVariantPath), nil, 0o600)
}

// Unlock removes lock markers so the artifacts can be retrieved.
func (a *LocalArtifacts) Unlock(_ context.Context, rec *JobApplicationRecord) error {
	for _, path := range []string{rec.ResumeVariantPath, rec.HighlightsPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(lockMarker(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("artifacts: unlock %s: %w", path, err)
		}
	}
	return nil
}

// DeleteResume removes a tailored resume artifact and its lock marker.
// A missing file is not an error: the reference is what gets invalidated.
func (a *LocalArtifacts) DeleteResume(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("artifacts: delete %s: %w", path, err)
	}
	_ = os.Remove(lockMarker(path))
	return nil
}

// Locked reports whether the artifact at path is still lock-marked.
func (a *LocalArtifacts) Locked(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(lockMarker(path))
	return err == nil
}

// JobDir returns the artifact directory for one job, creating it on demand.
func (a *LocalArtifacts) JobDir(jobID string) (string, error) {
	dir := filepath.Join(a.dir, jobID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("artifacts: mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// Package-level tailor client and artifact store, set from main.
var (
	activeTailor    Tailor
	activeArtifacts *LocalArtifacts
)

// SetTailor installs the process-wide tailoring client.
func SetTailor(t Tailor) { activeTailor = t }

// GetTailor returns the installed tailoring client (may be nil).
func GetTailor() Tailor { return activeTailor }

// SetArtifacts installs the process-wide artifact store.
func SetArtifacts(a *LocalArtifacts) { activeArtifacts = a }

// GetArtifacts returns the installed artifact store (may be nil).
func GetArtifacts() *LocalArtifacts { return activeArtifacts }
