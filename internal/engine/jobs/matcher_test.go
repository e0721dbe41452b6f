package jobs

import (
	"testing"
	"time"
)

func pendingRecord(id, title, company string, created time.Time) JobApplicationRecord {
	return JobApplicationRecord{
		JobID:     id,
		Title:     title,
		Company:   company,
		Status:    StatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMatchPendingByCompany(t *testing.T) {
	now := time.Now().UTC()
	records := []JobApplicationRecord{
		pendingRecord("job-1", "Supply Chain Manager", "Globex", now),
		pendingRecord("job-2", "Logistics Analyst", "Initech", now.Add(-time.Hour)),
	}
	msg := EmailMessage{
		Subject: "Your application at Globex",
		Body:    "Thank you for applying.",
	}
	jobID, ok := MatchPending(msg, records)
	if !ok || jobID != "job-1" {
		t.Fatalf("MatchPending = (%q, %v), want (job-1, true)", jobID, ok)
	}
}

func TestMatchPendingByTitleTokens(t *testing.T) {
	now := time.Now().UTC()
	records := []JobApplicationRecord{
		pendingRecord("job-1", "Supply Chain Manager", "Globex", now),
	}
	msg := EmailMessage{
		Subject: "Re: Supply Chain Manager position",
		Body:    "We received your application.",
	}
	jobID, ok := MatchPending(msg, records)
	if !ok || jobID != "job-1" {
		t.Fatalf("MatchPending = (%q, %v), want (job-1, true)", jobID, ok)
	}
}

func TestMatchPendingSkipsSettledRecords(t *testing.T) {
	now := time.Now().UTC()
	discarded := pendingRecord("job-1", "Supply Chain Manager", "Globex", now)
	discarded.Status = StatusDiscarded
	records := []JobApplicationRecord{discarded}

	msg := EmailMessage{Subject: "Globex hiring update"}
	if jobID, ok := MatchPending(msg, records); ok {
		t.Fatalf("matched settled record %q, want no match", jobID)
	}
}

func TestMatchPendingPrefersMostRecent(t *testing.T) {
	now := time.Now().UTC()
	records := []JobApplicationRecord{
		pendingRecord("job-old", "Operations Manager", "Globex", now.Add(-48*time.Hour)),
		pendingRecord("job-new", "Logistics Manager", "Globex", now),
	}
	msg := EmailMessage{Subject: "Update from Globex"}
	jobID, ok := MatchPending(msg, records)
	if !ok || jobID != "job-new" {
		t.Fatalf("MatchPending = (%q, %v), want (job-new, true)", jobID, ok)
	}
}

func TestMatchPendingAmbiguousTie(t *testing.T) {
	now := time.Now().UTC()
	records := []JobApplicationRecord{
		pendingRecord("job-a", "Operations Manager", "Globex", now),
		pendingRecord("job-b", "Logistics Manager", "Globex", now),
	}
	msg := EmailMessage{Subject: "Update from Globex"}
	if jobID, ok := MatchPending(msg, records); ok {
		t.Fatalf("matched %q on an ambiguous tie, want no match", jobID)
	}
}

func TestMatchPendingNoCandidates(t *testing.T) {
	msg := EmailMessage{Subject: "Anything"}
	if jobID, ok := MatchPending(msg, nil); ok {
		t.Fatalf("matched %q with no records", jobID)
	}
}

func TestMatchPendingEmptyMessage(t *testing.T) {
	records := []JobApplicationRecord{
		pendingRecord("job-1", "Supply Chain Manager", "Globex", time.Now().UTC()),
	}
	if jobID, ok := MatchPending(EmailMessage{}, records); ok {
		t.Fatalf("matched %q for an empty message", jobID)
	}
}
