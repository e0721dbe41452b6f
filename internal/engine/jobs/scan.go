package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// MessageFetcher hands over raw inbox messages for a lookback window.
// IMAP session management lives behind this boundary; the engine only ever
// sees plain in-memory message text.
type MessageFetcher interface {
	Fetch(ctx context.Context, hours int) ([]EmailMessage, error)
}

// ScanEntry is one processed email in a scan report.
type ScanEntry struct {
	Sender         string   `json:"sender"`
	SubjectExcerpt string   `json:"subject_excerpt"`
	Category       Category `json:"category"`
	Confidence     float64  `json:"confidence"`
	MatchedJobID   string   `json:"matched_job_id,omitempty"`
	Transition     string   `json:"transition,omitempty"`
}

// ScanCounts aggregates a scan by category plus unmatched actionable emails.
type ScanCounts struct {
	Interview int `json:"interview"`
	Recruiter int `json:"recruiter"`
	Rejection int `json:"rejection"`
	Other     int `json:"other"`
	Unmatched int `json:"unmatched"`
}

// ScanReport is the persisted outcome of one inbox scan.
type ScanReport struct {
	ScanID        string      `json:"scan_id"`
	ScannedAt     time.Time   `json:"scanned_at"`
	LookbackHours int         `json:"lookback_hours"`
	TotalMessages int         `json:"total_messages"`
	Counts        ScanCounts  `json:"counts"`
	Emails        []ScanEntry `json:"emails"`
}

// Scanner runs discrete on-demand inbox scans: classify each message, match
// it to a pending record, and drive the resulting state transition. Each
// record's transition is atomic; the scan as a whole is not a transaction.
type Scanner struct {
	fetcher    MessageFetcher
	pipeline   *Pipeline
	store      Store
	rules      ClassifierRules
	reportsDir string
}

// NewScanner wires a scanner over the given collaborators.
func NewScanner(fetcher MessageFetcher, pipeline *Pipeline, store Store, rules ClassifierRules, reportsDir string) *Scanner {
	return &Scanner{
		fetcher:    fetcher,
		pipeline:   pipeline,
		store:      store,
		rules:      rules,
		reportsDir: reportsDir,
	}
}

// Scan fetches messages for the lookback window, classifies and matches each
// one, applies transitions, and writes the report (latest + timestamped).
func (s *Scanner) Scan(ctx context.Context, hours int) (*ScanReport, error) {
	if hours <= 0 {
		hours = 48
	}

	messages, err := s.fetcher.Fetch(ctx, hours)
	if err != nil {
		return nil, fmt.Errorf("scan: fetch messages: %w", err)
	}

	// One pending snapshot per scan; records that transition drop out of the
	// candidate set so a later email cannot re-match a just-settled job.
	pending, err := s.store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("scan: list pending: %w", err)
	}

	report := &ScanReport{
		ScanID:        uuid.NewString(),
		ScannedAt:     time.Now().UTC(),
		LookbackHours: hours,
		TotalMessages: len(messages),
		Emails:        []ScanEntry{},
	}

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		class := Classify(msg, s.rules)
		entry := ScanEntry{
			Sender:         msg.Sender,
			SubjectExcerpt: engine.TruncateRunes(msg.Subject, 80, "..."),
			Category:       class.Category,
			Confidence:     class.Confidence,
		}

		switch class.Category {
		case CategoryInterview:
			report.Counts.Interview++
		case CategoryRecruiter:
			report.Counts.Recruiter++
		case CategoryRejection:
			report.Counts.Rejection++
		default:
			report.Counts.Other++
		}

		if class.Category != CategoryOther {
			jobID, ok := MatchPending(msg, pending)
			if !ok {
				report.Counts.Unmatched++
			} else {
				entry.MatchedJobID = jobID
				result, err := s.pipeline.ApplyClassification(ctx, class, jobID)
				switch {
				case err != nil:
					slog.Warn("scan: transition failed",
						slog.String("job_id", jobID), slog.Any("error", err))
				case result.Applied:
					entry.Transition = string(result.Status)
					pending = dropRecord(pending, jobID)
				default:
					entry.Transition = "no-op: " + result.Reason
				}
			}
		}

		report.Emails = append(report.Emails, entry)
	}

	if err := s.writeReport(report); err != nil {
		return nil, err
	}
	engine.IncrScansCompleted()

	slog.Info("scan complete",
		slog.String("scan_id", report.ScanID),
		slog.Int("messages", report.TotalMessages),
		slog.Int("rejections", report.Counts.Rejection),
		slog.Int("unmatched", report.Counts.Unmatched),
	)
	return report, nil
}

// dropRecord removes the record with jobID from the candidate slice.
func dropRecord(records []JobApplicationRecord, jobID string) []JobApplicationRecord {
	out := records[:0]
	for _, rec := range records {
		if rec.JobID != jobID {
			out = append(out, rec)
		}
	}
	return out
}

// writeReport persists the timestamped report and the "latest" copy.
func (s *Scanner) writeReport(report *ScanReport) error {
	if s.reportsDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.reportsDir, 0o750); err != nil {
		return fmt.Errorf("scan: mkdir reports: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("scan: encode report: %w", err)
	}

	stamp := report.ScannedAt.Format("20060102_150405")
	dated := filepath.Join(s.reportsDir, fmt.Sprintf("email_scan_report_%s.json", stamp))
	latest := filepath.Join(s.reportsDir, "email_scan_report_latest.json")

	if err := os.WriteFile(dated, data, 0o600); err != nil {
		return fmt.Errorf("scan: write report: %w", err)
	}
	if err := os.WriteFile(latest, data, 0o600); err != nil {
		return fmt.Errorf("scan: write latest report: %w", err)
	}
	return nil
}

// LoadLatestReport reads the most recent scan report, if any.
func LoadLatestReport(reportsDir string) (*ScanReport, error) {
	data, err := os.ReadFile(filepath.Join(reportsDir, "email_scan_report_latest.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.New("no scan report yet")
		}
		return nil, err
	}
	var report ScanReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("scan: decode latest report: %w", err)
	}
	return &report, nil
}

// Package-level scanner, set from main.
var activeScanner *Scanner

// SetScanner installs the process-wide inbox scanner.
func SetScanner(s *Scanner) { activeScanner = s }

// GetScanner returns the installed inbox scanner (may be nil).
func GetScanner() *Scanner { return activeScanner }
