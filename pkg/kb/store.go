package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Registry is the fixed set of cancer types the store loads at startup.
// "common" is a reserved entry carrying cross-cutting rules and is never a
// valid lookup target for the rule engine.
var Registry = []string{"breast", "brain", "lung", "liver", "pancreas"}

const CommonKey = "common"

type NotFoundError struct {
	CancerType string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no knowledge base entry for cancer type '%s'", e.CancerType)
}

// StageRule holds the interventions a single stage maps to. Targeted maps a
// biomarker name (EGFR, ALK, KRAS, HER2) to a therapy description. BRCA and
// Residual are cancer-specific extension sub-blocks; absent means the stage
// defines none.
type StageRule struct {
	PrimaryTreatments []string          `json:"primary_treatments"`
	Surgery           []string          `json:"surgery"`
	Radiation         []string          `json:"radiation"`
	Systemic          []string          `json:"systemic"`
	Targeted          map[string]string `json:"targeted"`
	Immunotherapy     []string          `json:"immunotherapy"`
	Alternatives      []string          `json:"alternatives"`
	FollowUp          []string          `json:"follow_up"`
	BRCA              []string          `json:"brca,omitempty"`
	Residual          []string          `json:"residual,omitempty"`
}

type Entry struct {
	Stages map[string]StageRule `json:"stages"`
}

// Common carries cross-cutting rules shared by every cancer type.
type Common struct {
	Contraindications map[string][]string `json:"contraindications"`
	FollowUp          map[string][]string `json:"follow_up"`
	Evidence          []string            `json:"evidence"`
}

// Store is the process-wide knowledge base: built once, read many times,
// never mutated. Rebuild requires a process restart.
type Store struct {
	entries map[string]Entry
	common  Common
}

// Load eagerly reads <type>_kb.json for every registry entry plus
// common_kb.json from dir. A missing or malformed file fails the load; the
// store never starts partially populated.
func Load(dir string) (*Store, error) {
	entries := make(map[string]Entry, len(Registry))
	for _, cancer := range Registry {
		path := filepath.Join(dir, cancer+"_kb.json")
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("reading knowledge base for %s: %w", cancer, err)
		}
		var entry Entry
		if err := json.Unmarshal(content, &entry); err != nil {
			return nil, fmt.Errorf("parsing knowledge base for %s: %w", cancer, err)
		}
		if len(entry.Stages) == 0 {
			return nil, fmt.Errorf("knowledge base for %s defines no stages", cancer)
		}
		entries[cancer] = entry
	}

	content, err := os.ReadFile(filepath.Clean(filepath.Join(dir, "common_kb.json")))
	if err != nil {
		return nil, fmt.Errorf("reading common knowledge base: %w", err)
	}
	var common Common
	if err := json.Unmarshal(content, &common); err != nil {
		return nil, fmt.Errorf("parsing common knowledge base: %w", err)
	}

	return &Store{entries: entries, common: common}, nil
}

func (s *Store) Entry(cancerType string) (Entry, error) {
	key := strings.ToLower(strings.TrimSpace(cancerType))
	if key == "" || key == CommonKey {
		return Entry{}, NotFoundError{CancerType: cancerType}
	}
	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, NotFoundError{CancerType: cancerType}
	}
	return entry, nil
}

func (s *Store) Common() Common {
	return s.common
}

// Supported reports whether the store holds rules for the cancer type.
func (s *Store) Supported(cancerType string) bool {
	_, err := s.Entry(cancerType)
	return err == nil
}

// StandardFollowUp is the global fallback surveillance list applied when a
// stage rule defines no follow-up items.
func (s *Store) StandardFollowUp() []string {
	return s.common.FollowUp["standard"]
}
