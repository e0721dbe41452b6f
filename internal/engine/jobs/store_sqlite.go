package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteStore is a Store backed by a single SQLite database. Useful when the
// applications dir would hold thousands of documents; selected via
// STORE_BACKEND=sqlite.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite pipeline store at path.
func NewSQLiteStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("sqlite store: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS applications (
		job_id              TEXT PRIMARY KEY,
		title               TEXT NOT NULL,
		company             TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'pending',
		ats_score           REAL NOT NULL DEFAULT 0,
		resume_variant_path TEXT,
		highlights_path     TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, jobID string) (*JobApplicationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT job_id, title, company, status, ats_score, resume_variant_path, highlights_path, created_at, updated_at
		 FROM applications WHERE job_id = ?`, jobID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: get %s: %w", jobID, err)
	}
	return rec, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, rec *JobApplicationRecord) error {
	if rec == nil || rec.JobID == "" {
		return errors.New("sqlite store: record with job_id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (job_id, title, company, status, ats_score, resume_variant_path, highlights_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			status = excluded.status,
			ats_score = excluded.ats_score,
			resume_variant_path = excluded.resume_variant_path,
			highlights_path = excluded.highlights_path,
			updated_at = excluded.updated_at`,
		rec.JobID, rec.Title, rec.Company, string(rec.Status), rec.ATSScore,
		nullable(rec.ResumeVariantPath), nullable(rec.HighlightsPath),
		rec.CreatedAt.UTC().Format(time.RFC3339), rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite store: upsert %s: %w", rec.JobID, err)
	}
	return nil
}

func (s *sqliteStore) ListByStatus(ctx context.Context, status Status) ([]JobApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, title, company, status, ats_score, resume_variant_path, highlights_path, created_at, updated_at
		 FROM applications WHERE status = ? ORDER BY created_at DESC, job_id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list by status: %w", err)
	}
	return collectRecords(rows)
}

func (s *sqliteStore) ListAll(ctx context.Context) ([]JobApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, title, company, status, ats_score, resume_variant_path, highlights_path, created_at, updated_at
		 FROM applications ORDER BY created_at DESC, job_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list: %w", err)
	}
	return collectRecords(rows)
}

// Close releases the underlying database handle.
func (s *sqliteStore) Close() error { return s.db.Close() }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*JobApplicationRecord, error) {
	var rec JobApplicationRecord
	var status string
	var resumePath, highlightsPath sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&rec.JobID, &rec.Title, &rec.Company, &status, &rec.ATSScore,
		&resumePath, &highlightsPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.ResumeVariantPath = resumePath.String
	rec.HighlightsPath = highlightsPath.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]JobApplicationRecord, error) {
	defer rows.Close()
	var records []JobApplicationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
