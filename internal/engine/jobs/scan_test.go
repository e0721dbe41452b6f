package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeFetcher returns a fixed message set.
type fakeFetcher struct {
	messages []EmailMessage
	gotHours int
}

func (f *fakeFetcher) Fetch(_ context.Context, hours int) ([]EmailMessage, error) {
	f.gotHours = hours
	return f.messages, nil
}

func newTestScanner(t *testing.T, messages []EmailMessage) (*Scanner, Store, string) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	reports := t.TempDir()
	pipeline := NewPipeline(store, &fakeArtifacts{})
	scanner := NewScanner(&fakeFetcher{messages: messages}, pipeline, store, DefaultRules().Classifier, reports)
	return scanner, store, reports
}

func TestScanDiscardsRejectedApplication(t *testing.T) {
	messages := []EmailMessage{
		{
			Sender:     "no-reply@globex.com",
			Subject:    "Your application at Globex",
			Body:       "Unfortunately we have decided to move forward with other candidates.",
			ReceivedAt: time.Now().UTC(),
		},
	}
	scanner, store, reports := newTestScanner(t, messages)
	ctx := context.Background()

	rec := storeRecord("job-1", StatusPending, time.Now().UTC())
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	report, err := scanner.Scan(ctx, 48)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if report.TotalMessages != 1 || report.Counts.Rejection != 1 {
		t.Errorf("report counts = %+v, want one rejection", report.Counts)
	}
	if len(report.Emails) != 1 {
		t.Fatalf("len(Emails) = %d, want 1", len(report.Emails))
	}
	entry := report.Emails[0]
	if entry.MatchedJobID != "job-1" {
		t.Errorf("MatchedJobID = %q, want job-1", entry.MatchedJobID)
	}
	if entry.Transition != string(StatusDiscarded) {
		t.Errorf("Transition = %q, want discarded", entry.Transition)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != StatusDiscarded {
		t.Errorf("Status = %v, want discarded", got.Status)
	}

	// Both the latest and the timestamped report exist.
	if _, err := os.Stat(filepath.Join(reports, "email_scan_report_latest.json")); err != nil {
		t.Errorf("latest report missing: %v", err)
	}
	entries, err := os.ReadDir(reports)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("report files = %d, want latest + timestamped", len(entries))
	}
}

func TestScanUnmatchedActionableEmail(t *testing.T) {
	messages := []EmailMessage{
		{
			Subject:    "Interview invitation from Initech",
			Body:       "We would like to schedule a call for a technical interview.",
			ReceivedAt: time.Now().UTC(),
		},
	}
	scanner, store, _ := newTestScanner(t, messages)
	ctx := context.Background()

	// Pending record for an unrelated company.
	if err := store.Upsert(ctx, storeRecord("job-1", StatusPending, time.Now().UTC())); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	report, err := scanner.Scan(ctx, 24)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if report.Counts.Interview != 1 || report.Counts.Unmatched != 1 {
		t.Errorf("counts = %+v, want one unmatched interview", report.Counts)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %v, want untouched pending", got.Status)
	}
}

func TestScanOtherEmailsNeverTransition(t *testing.T) {
	messages := []EmailMessage{
		{Subject: "Globex weekly digest", Body: "Industry news you might like.", ReceivedAt: time.Now().UTC()},
	}
	scanner, store, _ := newTestScanner(t, messages)
	ctx := context.Background()

	if err := store.Upsert(ctx, storeRecord("job-1", StatusPending, time.Now().UTC())); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	report, err := scanner.Scan(ctx, 48)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if report.Counts.Other != 1 {
		t.Errorf("counts = %+v, want one other", report.Counts)
	}
	// "other" emails are counted but never matched or transitioned, even when
	// the company name appears in the text.
	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %v, want pending", got.Status)
	}
}

func TestScanDefaultLookback(t *testing.T) {
	fetcher := &fakeFetcher{}
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	scanner := NewScanner(fetcher, NewPipeline(store, nil), store, DefaultRules().Classifier, t.TempDir())

	if _, err := scanner.Scan(context.Background(), 0); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if fetcher.gotHours != 48 {
		t.Errorf("lookback = %d, want default 48", fetcher.gotHours)
	}
}

func TestScanSettledRecordNotRematched(t *testing.T) {
	// Two rejection emails for the same company: the first settles the only
	// pending record, the second must count as unmatched.
	msg := EmailMessage{
		Subject:    "Globex application update",
		Body:       "We regret to inform you that the position has been filled.",
		ReceivedAt: time.Now().UTC(),
	}
	scanner, store, _ := newTestScanner(t, []EmailMessage{msg, msg})
	ctx := context.Background()

	if err := store.Upsert(ctx, storeRecord("job-1", StatusPending, time.Now().UTC())); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	report, err := scanner.Scan(ctx, 48)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if report.Counts.Rejection != 2 {
		t.Errorf("rejections = %d, want 2", report.Counts.Rejection)
	}
	if report.Counts.Unmatched != 1 {
		t.Errorf("unmatched = %d, want 1 after the record settled", report.Counts.Unmatched)
	}
}

func TestLoadLatestReportMissing(t *testing.T) {
	if _, err := LoadLatestReport(t.TempDir()); err == nil {
		t.Error("expected error when no report exists")
	}
}
