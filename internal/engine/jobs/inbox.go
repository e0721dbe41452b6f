package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DirFetcher reads messages exported into a local directory, one JSON
// document per email. Whatever syncs the mailbox (an IMAP bridge, a mail
// client export) stays outside the engine; this is the drop-off point.
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a fetcher over an inbox export directory.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch returns messages received within the lookback window, oldest first.
// Unreadable or malformed documents are skipped.
func (f *DirFetcher) Fetch(ctx context.Context, hours int) ([]EmailMessage, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var messages []EmailMessage
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.dir, entry.Name()))
		if err != nil {
			continue
		}
		var msg EmailMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if !msg.ReceivedAt.IsZero() && msg.ReceivedAt.Before(cutoff) {
			continue
		}
		messages = append(messages, msg)
	}

	// Oldest first so transitions replay in delivery order.
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.Before(messages[j].ReceivedAt)
	})
	return messages, nil
}
