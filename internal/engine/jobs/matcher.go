package jobs

import (
	"sort"
	"strings"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// MatchPending links a classified email to the most likely pending record.
//
// Only pending records are candidates: confirmed/discarded/applied records are
// skipped even if the email text matches them, which prevents status flapping
// when a thread keeps referencing an already-settled job. A record matches
// when its normalized company name appears in the email, or when enough of
// its title tokens do. Multiple matches prefer the most recently created
// record; an exact creation-time tie is ambiguous and yields no match.
func MatchPending(msg EmailMessage, records []JobApplicationRecord) (string, bool) {
	haystack := strings.ToLower(msg.Subject + " " + engine.NormalizeDocument(msg.Body))
	if strings.TrimSpace(haystack) == "" {
		return "", false
	}

	var candidates []JobApplicationRecord
	for _, rec := range records {
		if rec.Status != StatusPending {
			continue
		}
		if recordMentioned(haystack, rec) {
			candidates = append(candidates, rec)
		}
	}

	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0].JobID, true
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].JobID < candidates[j].JobID
	})
	if candidates[0].CreatedAt.Equal(candidates[1].CreatedAt) {
		return "", false // equally recent — ambiguous
	}
	return candidates[0].JobID, true
}

// recordMentioned tests whether the email text plausibly refers to the record.
func recordMentioned(haystack string, rec JobApplicationRecord) bool {
	company := strings.ToLower(strings.TrimSpace(rec.Company))
	if len(company) >= 3 && strings.Contains(haystack, company) {
		return true
	}

	tokens := titleTokens(rec.Title)
	if len(tokens) == 0 {
		return false
	}
	found := 0
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			found++
		}
	}
	needed := (len(tokens) + 1) / 2
	if needed < 1 {
		needed = 1
	}
	if len(tokens) == 1 {
		needed = 1
	}
	return found >= needed && found >= min(2, len(tokens))
}

// titleTokens extracts the significant words of a job title, lowercased.
func titleTokens(title string) []string {
	kw := extractKeywords(title)
	tokens := make([]string, 0, len(kw))
	for tok := range kw {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}
