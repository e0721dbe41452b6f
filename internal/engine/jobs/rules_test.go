package jobs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRulesWeights(t *testing.T) {
	rc := DefaultRules()

	if rc.Scoring.PositivePerHit != 3 || rc.Scoring.PositiveCap != 15 {
		t.Errorf("positive weights = (%v, %v), want (3, 15)", rc.Scoring.PositivePerHit, rc.Scoring.PositiveCap)
	}
	if rc.Scoring.NegativePerHit != 8 || rc.Scoring.NegativeCap != 32 {
		t.Errorf("negative weights = (%v, %v), want (8, 32)", rc.Scoring.NegativePerHit, rc.Scoring.NegativeCap)
	}
	if rc.Scoring.StrengthBonus != 5 {
		t.Errorf("StrengthBonus = %v, want 5", rc.Scoring.StrengthBonus)
	}
	if rc.Scoring.MismatchMinNegative != 2 || rc.Scoring.MismatchCeiling != 45 {
		t.Errorf("mismatch = (%v, %v), want (2, 45)", rc.Scoring.MismatchMinNegative, rc.Scoring.MismatchCeiling)
	}
	if len(rc.Classifier.Rejection) == 0 || len(rc.Classifier.Interview) == 0 || len(rc.Classifier.Recruiter) == 0 {
		t.Error("classifier tables incomplete")
	}
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rc, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rc.Scoring.TailorThreshold != DefaultRules().Scoring.TailorThreshold {
		t.Error("empty path did not return defaults")
	}
}

func TestLoadRulesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
scoring:
  tailor_threshold: 55
  positive_phrases:
    - fleet management
    - customs
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rc, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rc.Scoring.TailorThreshold != 55 {
		t.Errorf("TailorThreshold = %v, want 55 from file", rc.Scoring.TailorThreshold)
	}
	if len(rc.Scoring.PositivePhrases) != 2 || rc.Scoring.PositivePhrases[0] != "fleet management" {
		t.Errorf("PositivePhrases = %v, want file values", rc.Scoring.PositivePhrases)
	}
	// Sections absent from the file keep their defaults.
	if rc.Scoring.NegativePerHit != 8 {
		t.Errorf("NegativePerHit = %v, want default 8", rc.Scoring.NegativePerHit)
	}
	if len(rc.Classifier.Rejection) == 0 {
		t.Error("classifier defaults lost")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing rules file")
	}
}
