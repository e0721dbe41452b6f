package jobs

import "time"

// Status is the lifecycle state of a tracked job application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDiscarded Status = "discarded"
	StatusApplied   Status = "applied"
	StatusUnknown   Status = "unknown"
)

// Terminal reports whether no email-driven transition may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusDiscarded, StatusApplied:
		return true
	}
	return false
}

// ValidStatus checks if a status string is a known lifecycle state.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusDiscarded, StatusApplied, StatusUnknown:
		return true
	}
	return false
}

// JobPosting is an ingested job listing. Immutable after ingestion.
type JobPosting struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Source       string    `json:"source,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// JobApplicationRecord tracks one job application through the pipeline.
// Mutated only via the state machine; never deleted, only transitioned.
type JobApplicationRecord struct {
	JobID             string    `json:"job_id"`
	Title             string    `json:"title"`
	Company           string    `json:"company"`
	Status            Status    `json:"status"`
	ATSScore          float64   `json:"ats_score"`
	ResumeVariantPath string    `json:"resume_variant_path,omitempty"`
	HighlightsPath    string    `json:"highlights_path,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EmailMessage is a raw inbound email handed over by the inbox collaborator.
// Transient; only the derived classification is persisted.
type EmailMessage struct {
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// Category is the closed set of email classifications.
type Category string

const (
	CategoryInterview Category = "interview"
	CategoryRecruiter Category = "recruiter"
	CategoryRejection Category = "rejection"
	CategoryOther     Category = "other"
)

// ClassificationResult labels one email with keyword evidence.
type ClassificationResult struct {
	Category   Category `json:"category"`
	Matched    []string `json:"matched,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Decision is the outcome the scoring engine recommends for a posting.
type Decision string

const (
	DecisionTailor Decision = "tailor"
	DecisionSkip   Decision = "skip"
)

// ScoreResult is the derived fit score for one (posting, profile) pair.
// Not persisted beyond the decision it drives.
type ScoreResult struct {
	JobID        string   `json:"job_id"`
	BaseScore    float64  `json:"base_score"`
	Adjustment   float64  `json:"alignment_adjustment"`
	FinalScore   float64  `json:"final_score"`
	Decision     Decision `json:"decision"`
	PositiveHits []string `json:"positive_hits,omitempty"`
	NegativeHits []string `json:"negative_hits,omitempty"`
	HardMismatch bool     `json:"hard_mismatch"`
}

// CandidateProfile is the normalized view of an uploaded resume.
// Immutable until the next upload.
type CandidateProfile struct {
	Skills    []string  `json:"skills"`
	Positions []string  `json:"positions"`
	RawText   string    `json:"raw_text,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
