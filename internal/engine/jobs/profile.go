package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// ErrProfileExtraction is returned when an uploaded resume yields no usable
// text, so the previously stored profile stays authoritative.
var ErrProfileExtraction = errors.New("profile: document extraction failed")

// NormalizeProfile converts a raw extracted resume into the canonical profile
// representation: lowercased keyword set plus the cleaned raw text. The same
// normalization path runs for every input format, so scoring is deterministic
// regardless of whether the upload was PDF, DOCX, markdown, or plain text.
func NormalizeProfile(raw string) (*CandidateProfile, error) {
	text := engine.NormalizeDocument(raw)
	if strings.TrimSpace(text) == "" {
		return nil, ErrProfileExtraction
	}

	keywords := extractKeywords(text)
	skills := make([]string, 0, len(keywords))
	for kw := range keywords {
		skills = append(skills, kw)
	}
	sort.Strings(skills)

	return &CandidateProfile{
		Skills:    skills,
		Positions: extractPositions(text),
		RawText:   text,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// positionMarkers are line prefixes that usually introduce a job title in a
// resume's experience section.
var positionMarkers = []string{
	"senior ", "staff ", "lead ", "principal ", "head of ", "director ",
	"manager", "engineer", "analyst", "specialist", "consultant", "coordinator",
}

// extractPositions pulls likely position titles out of normalized resume text.
// Best effort: short lines that look like titles, capped at 20.
func extractPositions(text string) []string {
	var positions []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		if line == "" || len(line) > 80 || strings.Count(line, " ") > 7 {
			continue
		}
		lower := strings.ToLower(line)
		for _, marker := range positionMarkers {
			if strings.Contains(lower, marker) && !seen[lower] {
				seen[lower] = true
				positions = append(positions, line)
				break
			}
		}
		if len(positions) >= 20 {
			break
		}
	}
	return positions
}

// profilePath is the canonical on-disk location of the candidate profile.
func profilePath() string {
	return filepath.Join(engine.Cfg.DataDir, "profile.json")
}

var (
	profileMu     sync.RWMutex
	activeProfile *CandidateProfile
)

// SetProfile installs the profile in memory and persists it. The old profile
// is only replaced after a successful write.
func SetProfile(p *CandidateProfile) error {
	if p == nil {
		return errors.New("profile: nil profile")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: encode: %w", err)
	}
	path := profilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("profile: mkdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("profile: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("profile: write: %w", err)
	}

	profileMu.Lock()
	activeProfile = p
	profileMu.Unlock()
	engine.IncrProfileUploads()
	return nil
}

// GetProfile returns the current candidate profile, loading it from disk on
// first use. Returns nil when no profile has ever been uploaded.
func GetProfile() *CandidateProfile {
	profileMu.RLock()
	p := activeProfile
	profileMu.RUnlock()
	if p != nil {
		return p
	}

	data, err := os.ReadFile(profilePath())
	if err != nil {
		return nil
	}
	var loaded CandidateProfile
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil
	}

	profileMu.Lock()
	activeProfile = &loaded
	profileMu.Unlock()
	return &loaded
}

// ResetProfile drops the in-memory profile so the next GetProfile re-reads
// disk. Test hook.
func ResetProfile() {
	profileMu.Lock()
	activeProfile = nil
	profileMu.Unlock()
}
