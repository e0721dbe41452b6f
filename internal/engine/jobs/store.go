package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// ErrRecordNotFound is returned when no record exists for a job id.
var ErrRecordNotFound = errors.New("job application record not found")

// Store is the durable repository of job-application records. All mutation
// goes through the state machine; no component writes records directly.
// Implementations must allow concurrent readers and serialize writers per
// record. Each record is an independent unit of storage: a failed write never
// corrupts other records.
type Store interface {
	Get(ctx context.Context, jobID string) (*JobApplicationRecord, error)
	Upsert(ctx context.Context, rec *JobApplicationRecord) error
	ListByStatus(ctx context.Context, status Status) ([]JobApplicationRecord, error)
	ListAll(ctx context.Context) ([]JobApplicationRecord, error)
}

// fileStore keeps one JSON document per job under a directory.
type fileStore struct {
	dir string

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (Store, error) {
	if dir == "" {
		return nil, errors.New("store: applications dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &fileStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// recordLock returns the per-record write lock for jobID.
func (s *fileStore) recordLock(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[jobID] = l
	}
	return l
}

// recordPath sanitizes the job id into a filename.
func (s *fileStore) recordPath(jobID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, jobID)
	return filepath.Join(s.dir, safe+".json")
}

func (s *fileStore) Get(_ context.Context, jobID string) (*JobApplicationRecord, error) {
	data, err := os.ReadFile(s.recordPath(jobID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", jobID, err)
	}
	var rec JobApplicationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", jobID, err)
	}
	return &rec, nil
}

func (s *fileStore) Upsert(ctx context.Context, rec *JobApplicationRecord) error {
	if rec == nil || rec.JobID == "" {
		return errors.New("store: record with job_id is required")
	}
	l := s.recordLock(rec.JobID)
	l.Lock()
	defer l.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", rec.JobID, err)
	}

	// Temp-file + rename keeps the record intact if the write dies halfway.
	path := s.recordPath(rec.JobID)
	_, err = engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (struct{}, error) {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, os.Rename(tmp, path)
	})
	if err != nil {
		engine.IncrStoreWriteErrors()
		return fmt.Errorf("store: write %s: %w", rec.JobID, err)
	}
	return nil
}

func (s *fileStore) ListByStatus(ctx context.Context, status Status) ([]JobApplicationRecord, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, rec := range all {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fileStore) ListAll(_ context.Context) ([]JobApplicationRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read dir: %w", err)
	}

	var records []JobApplicationRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var rec JobApplicationRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			// One corrupt document must not hide the rest.
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].JobID < records[j].JobID
	})
	return records, nil
}

// Package-level store, set from main.
var (
	activeStore Store
	storeMu     sync.RWMutex
)

// SetStore installs the process-wide pipeline store.
func SetStore(s Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	activeStore = s
}

// GetStore returns the installed pipeline store (may be nil).
func GetStore() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return activeStore
}
