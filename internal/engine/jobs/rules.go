package jobs

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/viper"
)

// Rule is one weighted phrase in the classifier table.
type Rule struct {
	Phrase string  `mapstructure:"phrase"`
	Weight float64 `mapstructure:"weight"`
}

// ClassifierRules is the declarative weighted-rule table for email
// classification: one disjoint phrase set per category. Loaded once at
// startup and treated as immutable so Classify stays a pure function.
type ClassifierRules struct {
	SubjectWeight float64 `mapstructure:"subject_weight"`
	Rejection     []Rule  `mapstructure:"rejection"`
	Interview     []Rule  `mapstructure:"interview"`
	Recruiter     []Rule  `mapstructure:"recruiter"`
	Other         []Rule  `mapstructure:"other"`
}

// RuleConfig bundles all tunable keyword tables: scoring alignment families
// and the classifier rule table.
type RuleConfig struct {
	Scoring    AlignmentConfig `mapstructure:"scoring"`
	Classifier ClassifierRules `mapstructure:"classifier"`
}

// DefaultRules returns the built-in rule tables. The alignment weights match
// the long-tuned defaults: +3 per in-domain hit capped at +15, -8 per
// out-of-domain hit capped at -32, +5 when the profile already covers the
// domain, and a hard clamp to 45 on two-plus negative hits with no positives.
func DefaultRules() RuleConfig {
	return RuleConfig{
		Scoring: AlignmentConfig{
			PositivePhrases: []string{
				"supply chain", "operations", "operational", "logistics",
				"procurement", "inventory", "warehouse", "demand planning",
				"planning", "vendor management", "s&op", "erp",
			},
			NegativePhrases: []string{
				"software engineer", "software developer", "frontend",
				"backend", "full stack", "full-stack", "site reliability",
				"devops engineer",
			},
			PositivePerHit:      3,
			PositiveCap:         15,
			NegativePerHit:      8,
			NegativeCap:         32,
			StrengthBonus:       5,
			MismatchMinNegative: 2,
			MismatchCeiling:     45,
			TailorThreshold:     40,
		},
		Classifier: ClassifierRules{
			SubjectWeight: 2,
			Rejection: []Rule{
				{Phrase: "move forward with other candidates", Weight: 3},
				{Phrase: "we will not be moving forward", Weight: 3},
				{Phrase: "not moving forward", Weight: 3},
				{Phrase: "position has been filled", Weight: 3},
				{Phrase: "decided to pursue other applicants", Weight: 3},
				{Phrase: "your application was not successful", Weight: 3},
				{Phrase: "regret to inform you", Weight: 2},
				{Phrase: "not selected", Weight: 2},
				{Phrase: "no longer considering", Weight: 2},
				{Phrase: "unfortunately", Weight: 1},
				{Phrase: "decline", Weight: 1},
			},
			Interview: []Rule{
				{Phrase: "technical interview", Weight: 3},
				{Phrase: "screening call", Weight: 3},
				{Phrase: "schedule a call", Weight: 2},
				{Phrase: "interview", Weight: 2},
				{Phrase: "available for a call", Weight: 2},
				{Phrase: "your availability", Weight: 1},
				{Phrase: "next step", Weight: 1},
			},
			Recruiter: []Rule{
				{Phrase: "talent acquisition", Weight: 3},
				{Phrase: "came across your profile", Weight: 3},
				{Phrase: "opening on our team", Weight: 2},
				{Phrase: "would like to connect", Weight: 2},
				{Phrase: "hiring team", Weight: 1},
				{Phrase: "recruiter", Weight: 1},
				{Phrase: "opportunity", Weight: 1},
			},
			Other: nil,
		},
	}
}

// LoadRules reads rule overrides from a YAML file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadRules(path string) (RuleConfig, error) {
	rc := DefaultRules()
	if path == "" {
		return rc, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return rc, fmt.Errorf("rules: read %s: %w", path, err)
	}
	// Unmarshal only touches keys present in the file, so absent sections
	// keep their defaults.
	if err := v.Unmarshal(&rc); err != nil {
		return rc, fmt.Errorf("rules: parse %s: %w", path, err)
	}

	slog.Info("rules loaded",
		slog.String("path", path),
		slog.Int("positive_phrases", len(rc.Scoring.PositivePhrases)),
		slog.Int("negative_phrases", len(rc.Scoring.NegativePhrases)),
	)
	return rc, nil
}

// Package-level rules, set once from main.
var (
	rules     RuleConfig
	rulesOnce sync.Once
	rulesSet  bool
)

// SetRules installs the process-wide rule tables. Later calls are ignored.
func SetRules(rc RuleConfig) {
	rulesOnce.Do(func() {
		rules = rc
		rulesSet = true
	})
}

// GetRules returns the installed rule tables, falling back to defaults when
// main has not called SetRules (tests, library use).
func GetRules() RuleConfig {
	if !rulesSet {
		return DefaultRules()
	}
	return rules
}
