package kb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultStoreCoversRegistry(t *testing.T) {
	store := Default()
	for _, cancer := range Registry {
		if !store.Supported(cancer) {
			t.Fatalf("default store missing %s", cancer)
		}
		entry, err := store.Entry(cancer)
		if err != nil {
			t.Fatalf("%s: %v", cancer, err)
		}
		for stage, rule := range entry.Stages {
			if len(rule.PrimaryTreatments) == 0 {
				t.Fatalf("%s stage %s has no primary treatments", cancer, stage)
			}
		}
	}
	if len(store.StandardFollowUp()) == 0 {
		t.Fatal("default store has no standard follow-up")
	}
}

func TestEntryRejectsCommonAndEmpty(t *testing.T) {
	store := Default()
	for _, key := range []string{"", CommonKey, "unknown"} {
		if _, err := store.Entry(key); err == nil {
			t.Fatalf("expected error for %q", key)
		}
	}
}

func TestEntryIsCaseInsensitive(t *testing.T) {
	store := Default()
	if _, err := store.Entry("  Breast "); err != nil {
		t.Fatalf("expected case and whitespace tolerant lookup: %v", err)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDefaultKB(t, dir)

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	entry, err := store.Entry("lung")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if _, ok := entry.Stages["IV"]; !ok {
		t.Fatal("expected lung stage IV after round trip")
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected load failure for empty directory")
	}
}

func TestLoadFailsOnEmptyStages(t *testing.T) {
	dir := t.TempDir()
	writeDefaultKB(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "liver_kb.json"), []byte(`{"stages":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected load failure for entry without stages")
	}
}

// writeDefaultKB serializes the built-in store to the JSON layout Load reads.
func writeDefaultKB(t *testing.T, dir string) {
	t.Helper()
	store := Default()
	for _, cancer := range Registry {
		entry, err := store.Entry(cancer)
		if err != nil {
			t.Fatal(err)
		}
		content, err := json.Marshal(entry)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, cancer+"_kb.json"), content, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	content, err := json.Marshal(store.Common())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "common_kb.json"), content, 0o644); err != nil {
		t.Fatal(err)
	}
}
