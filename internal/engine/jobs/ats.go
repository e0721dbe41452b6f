package jobs

import (
	"sort"
	"strings"
	"unicode"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// matchStopWords filters common English words that add noise to keyword matching.
var matchStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
}

// extractKeywords tokenizes text into lowercase keywords, skipping stop words.
// Preserves tech suffixes like "c++", "c#", "node.js" by treating + # . as word chars.
func extractKeywords(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".") // drop trailing dots
		if len([]rune(w)) >= 3 && !matchStopWords[w] {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// ProfileKeywords tokenizes a profile's skills and positions into a keyword set.
// Call once per profile and reuse for batch scoring.
func ProfileKeywords(profile *CandidateProfile) map[string]bool {
	if profile == nil {
		return map[string]bool{}
	}
	joined := strings.Join(profile.Skills, " ") + " " + strings.Join(profile.Positions, " ")
	return extractKeywords(joined)
}

// AlignmentConfig holds the domain-alignment keyword families and weights.
// Positive families pull a posting toward tailoring, negative families away;
// the hard-mismatch clamp overrides everything else. All values are tunable
// via the rules file (see rules.go for defaults).
type AlignmentConfig struct {
	PositivePhrases []string `mapstructure:"positive_phrases"`
	NegativePhrases []string `mapstructure:"negative_phrases"`

	PositivePerHit float64 `mapstructure:"positive_per_hit"`
	PositiveCap    float64 `mapstructure:"positive_cap"`
	NegativePerHit float64 `mapstructure:"negative_per_hit"`
	NegativeCap    float64 `mapstructure:"negative_cap"`
	StrengthBonus  float64 `mapstructure:"strength_bonus"`

	// Hard mismatch: at least MismatchMinNegative negative-family hits with
	// zero positive hits clamps the final score to MismatchCeiling.
	MismatchMinNegative int     `mapstructure:"mismatch_min_negative"`
	MismatchCeiling     float64 `mapstructure:"mismatch_ceiling"`

	TailorThreshold float64 `mapstructure:"tailor_threshold"`
}

// phraseHits returns the distinct phrases from family found in text (sorted).
// Matching is case-insensitive substring, so multi-word families like
// "supply chain" hit regardless of tokenization.
func phraseHits(text string, family []string) []string {
	var hits []string
	for _, phrase := range family {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p != "" && strings.Contains(text, p) {
			hits = append(hits, p)
		}
	}
	sort.Strings(hits)
	return hits
}

// Score computes the fit score for one (posting, profile) pair.
// Pure function of its inputs: no I/O, deterministic for identical inputs.
//
// Base score is Jaccard keyword overlap (0–100) between the posting text and
// the profile's skills/positions. The alignment adjustment depends only on
// posting keywords, so a thin profile still gets the out-of-domain penalty.
// The hard-mismatch clamp is applied last and dominates all other terms.
func Score(posting JobPosting, profile *CandidateProfile, cfg AlignmentConfig) ScoreResult {
	result := ScoreResult{JobID: posting.ID, Decision: DecisionSkip}

	text := engine.NormalizeDocument(strings.TrimSpace(posting.Title + "\n" + posting.Description))
	if text == "" {
		return result
	}
	lower := strings.ToLower(text)

	postingKW := extractKeywords(text)
	profileKW := ProfileKeywords(profile)

	inter := 0
	for kw := range profileKW {
		if postingKW[kw] {
			inter++
		}
	}
	union := len(profileKW) + len(postingKW) - inter
	if union > 0 {
		raw := float64(inter) / float64(union) * 100
		result.BaseScore = float64(int(raw*10+0.5)) / 10 // round to 1 decimal
	}

	result.PositiveHits = phraseHits(lower, cfg.PositivePhrases)
	result.NegativeHits = phraseHits(lower, cfg.NegativePhrases)

	adj := float64(len(result.PositiveHits)) * cfg.PositivePerHit
	if adj > cfg.PositiveCap {
		adj = cfg.PositiveCap
	}
	penalty := float64(len(result.NegativeHits)) * cfg.NegativePerHit
	if penalty > cfg.NegativeCap {
		penalty = cfg.NegativeCap
	}
	adj -= penalty

	// Resume-strength bonus: profile already speaks the posting's domain.
	if len(result.PositiveHits) > 0 && profileInDomain(profile, cfg.PositivePhrases) {
		adj += cfg.StrengthBonus
	}
	result.Adjustment = adj

	final := result.BaseScore + adj
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	if cfg.MismatchMinNegative > 0 &&
		len(result.NegativeHits) >= cfg.MismatchMinNegative &&
		len(result.PositiveHits) == 0 {
		result.HardMismatch = true
		if final > cfg.MismatchCeiling {
			final = cfg.MismatchCeiling
		}
	}
	result.FinalScore = final

	if final >= cfg.TailorThreshold {
		result.Decision = DecisionTailor
	}
	return result
}

// profileInDomain reports whether any positive-family phrase appears in the
// profile's skills, positions or raw text.
func profileInDomain(profile *CandidateProfile, phrases []string) bool {
	if profile == nil {
		return false
	}
	haystack := strings.ToLower(strings.Join(profile.Skills, " ") + " " +
		strings.Join(profile.Positions, " ") + " " + profile.RawText)
	for _, phrase := range phrases {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p != "" && strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}
