package jobs

import (
	"sort"
	"strings"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// categoryPriority is the fixed tie-break order. Rejections are the highest
// cost false negative to miss, so they win equal scores.
var categoryPriority = []Category{
	CategoryRejection,
	CategoryInterview,
	CategoryRecruiter,
	CategoryOther,
}

// Classify labels one email against the weighted rule table.
// Pure function: case-insensitive substring matching over subject and body,
// subject hits multiplied by the configured subject weight. The winner is the
// highest nonzero score; ties resolve by the fixed priority order. Confidence
// is the winning score over the sum of all category scores.
//
// An empty or unreadable message degrades to (other, 0) — never an error.
func Classify(msg EmailMessage, rules ClassifierRules) ClassificationResult {
	engine.IncrEmailsClassified()

	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(engine.NormalizeDocument(msg.Body))

	subjectWeight := rules.SubjectWeight
	if subjectWeight <= 0 {
		subjectWeight = 1
	}

	scores := make(map[Category]float64, 4)
	matched := make(map[Category][]string, 4)
	for cat, table := range map[Category][]Rule{
		CategoryRejection: rules.Rejection,
		CategoryInterview: rules.Interview,
		CategoryRecruiter: rules.Recruiter,
		CategoryOther:     rules.Other,
	} {
		for _, rule := range table {
			phrase := strings.ToLower(strings.TrimSpace(rule.Phrase))
			if phrase == "" {
				continue
			}
			hit := false
			if strings.Contains(subject, phrase) {
				scores[cat] += rule.Weight * subjectWeight
				hit = true
			}
			if strings.Contains(body, phrase) {
				scores[cat] += rule.Weight
				hit = true
			}
			if hit {
				matched[cat] = append(matched[cat], phrase)
			}
		}
	}

	var total float64
	for _, s := range scores {
		total += s
	}

	winner := CategoryOther
	var best float64
	// Iterate in priority order so equal scores resolve deterministically.
	for _, cat := range categoryPriority {
		if scores[cat] > best {
			best = scores[cat]
			winner = cat
		}
	}

	result := ClassificationResult{Category: winner}
	if best > 0 && total > 0 {
		result.Confidence = best / total
		result.Matched = append([]string(nil), matched[winner]...)
		sort.Strings(result.Matched)
	}
	return result
}
