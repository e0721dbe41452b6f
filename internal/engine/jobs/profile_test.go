package jobs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

func setProfileDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	engine.Init(engine.Config{DataDir: dir})
	ResetProfile()
	t.Cleanup(ResetProfile)
	return dir
}

const sampleResume = `# Jane Doe

Senior Supply Chain Manager at Globex (2019-2024)
Logistics Analyst at Initech (2016-2019)

Skills: SAP, Excel, demand planning, procurement, vendor management.
`

func TestNormalizeProfile(t *testing.T) {
	setProfileDir(t)

	profile, err := NormalizeProfile(sampleResume)
	if err != nil {
		t.Fatalf("NormalizeProfile error: %v", err)
	}
	if len(profile.Skills) == 0 {
		t.Fatal("no skills extracted")
	}
	skillSet := make(map[string]bool, len(profile.Skills))
	for _, s := range profile.Skills {
		skillSet[s] = true
	}
	for _, want := range []string{"sap", "excel", "procurement", "logistics"} {
		if !skillSet[want] {
			t.Errorf("skills missing %q: %v", want, profile.Skills)
		}
	}
	if len(profile.Positions) == 0 {
		t.Error("no positions detected")
	}
	if profile.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestNormalizeProfileHTML(t *testing.T) {
	setProfileDir(t)

	profile, err := NormalizeProfile("<html><body><p>Procurement specialist with SAP.</p></body></html>")
	if err != nil {
		t.Fatalf("NormalizeProfile error: %v", err)
	}
	skillSet := make(map[string]bool, len(profile.Skills))
	for _, s := range profile.Skills {
		skillSet[s] = true
	}
	if !skillSet["procurement"] || !skillSet["sap"] {
		t.Errorf("skills = %v, want procurement and sap from HTML", profile.Skills)
	}
}

func TestNormalizeProfileEmpty(t *testing.T) {
	if _, err := NormalizeProfile("   \n\t  "); !errors.Is(err, ErrProfileExtraction) {
		t.Errorf("err = %v, want ErrProfileExtraction", err)
	}
}

func TestSetProfilePersists(t *testing.T) {
	dir := setProfileDir(t)

	profile, err := NormalizeProfile(sampleResume)
	if err != nil {
		t.Fatalf("NormalizeProfile error: %v", err)
	}
	if err := SetProfile(profile); err != nil {
		t.Fatalf("SetProfile error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "profile.json")); err != nil {
		t.Fatalf("profile.json not written: %v", err)
	}

	// A fresh load comes back from disk.
	ResetProfile()
	loaded := GetProfile()
	if loaded == nil {
		t.Fatal("GetProfile returned nil after persist")
	}
	if len(loaded.Skills) != len(profile.Skills) {
		t.Errorf("loaded %d skills, want %d", len(loaded.Skills), len(profile.Skills))
	}
}

func TestGetProfileNoneUploaded(t *testing.T) {
	setProfileDir(t)
	if p := GetProfile(); p != nil {
		t.Errorf("GetProfile = %+v, want nil before any upload", p)
	}
}

func TestSetProfileNil(t *testing.T) {
	setProfileDir(t)
	if err := SetProfile(nil); err == nil {
		t.Error("expected error for nil profile")
	}
}
