package rules

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
	"github.com/oncoplan-ai/platform/pkg/kb"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newEngine() *Engine {
	return NewEngine(kb.Default())
}

func TestEvaluateUnsupportedCancer(t *testing.T) {
	_, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "prostate",
		"stage":       "II",
	})
	var want UnsupportedCancerError
	if !errors.As(err, &want) {
		t.Fatalf("expected UnsupportedCancerError, got %v", err)
	}
	if want.CancerType != "prostate" {
		t.Fatalf("expected cancer type in error, got %q", want.CancerType)
	}
}

func TestEvaluateUnsupportedStage(t *testing.T) {
	_, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "breast",
		"stage":       "V",
	})
	var want UnsupportedStageError
	if !errors.As(err, &want) {
		t.Fatalf("expected UnsupportedStageError, got %v", err)
	}
}

func TestEvaluateDefaultsMissingStage(t *testing.T) {
	result, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "lung",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stage != "I" {
		t.Fatalf("expected default stage I, got %q", result.Stage)
	}
}

func TestBrainStageCollapsesToRecurrent(t *testing.T) {
	engine := newEngine()

	cases := []models.PatientRecord{
		{"cancer_type": "brain", "prior_radiation": "yes"},
		{"cancer_type": "brain", "diagnosis": "recurrent glioblastoma"},
		{"cancer_type": "brain", "stage": "RECURRENT"},
	}
	for i, patient := range cases {
		result, err := engine.Evaluate(patient)
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if result.Stage != StageRecurrent {
			t.Fatalf("case %d: expected RECURRENT, got %q", i, result.Stage)
		}
	}
}

func TestBrainStageDefaultsToLocalized(t *testing.T) {
	result, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "brain",
		"stage":       "IV",
		"diagnosis":   "glioblastoma",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stage != StageLocalized {
		t.Fatalf("expected LOCALIZED for non-recurrent brain tumor, got %q", result.Stage)
	}
}

func TestFrailtyOverridesAdjustment(t *testing.T) {
	engine := newEngine()

	baseline, err := engine.Evaluate(models.PatientRecord{
		"cancer_type": "lung",
		"stage":       "III",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(baseline.PerformanceAdjustment, "frail") {
		t.Fatalf("baseline adjustment should not mention frailty: %q", baseline.PerformanceAdjustment)
	}

	for _, patient := range []models.PatientRecord{
		{"cancer_type": "lung", "stage": "III", "kps": 60},
		{"cancer_type": "lung", "stage": "III", "ecog": 3},
	} {
		result, err := engine.Evaluate(patient)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PerformanceAdjustment != frailtyAdjustment {
			t.Fatalf("expected frailty adjustment to replace default, got %q", result.PerformanceAdjustment)
		}
		if !containsString(result.Warnings, frailtyWarning) {
			t.Fatalf("expected frailty warning in %v", result.Warnings)
		}
	}
}

func TestBorderlinePerformanceKeepsDefault(t *testing.T) {
	result, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "lung",
		"stage":       "III",
		"kps":         70,
		"ecog":        1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PerformanceAdjustment == frailtyAdjustment {
		t.Fatal("KPS 70 / ECOG 1 must not trigger the frailty override")
	}
}

func TestComorbiditiesAreAdditive(t *testing.T) {
	result, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type":   "breast",
		"stage":         "II",
		"comorbidities": "chronic kidney disease, cardiac arrhythmia, type 2 diabetes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	common := kb.Default().Common()
	wantContra := len(common.Contraindications["cardiac"]) + len(common.Contraindications["renal"])
	if len(result.Contraindications) != wantContra {
		t.Fatalf("expected %d contraindications, got %d: %v", wantContra, len(result.Contraindications), result.Contraindications)
	}

	var cardiac, renal, glucose bool
	for _, w := range result.Warnings {
		if strings.Contains(w, "Cardiac") {
			cardiac = true
		}
		if strings.Contains(w, "Renal") {
			renal = true
		}
		if strings.Contains(w, "glucose") {
			glucose = true
		}
	}
	if !cardiac || !renal || !glucose {
		t.Fatalf("expected all three comorbidity warnings, got %v", result.Warnings)
	}
}

func TestBreastBiomarkerSubBlocks(t *testing.T) {
	result, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "breast",
		"stage":       "I",
		"BRCA":        "positive",
		"residual":    "yes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.BRCAOptions) == 0 {
		t.Fatal("expected BRCA options for BRCA-positive patient")
	}
	if len(result.ResidualDisease) == 0 {
		t.Fatal("expected residual disease options")
	}

	negative, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "breast",
		"stage":       "I",
		"BRCA":        "negative",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(negative.BRCAOptions) != 0 {
		t.Fatalf("BRCA-negative patient must not get BRCA options: %v", negative.BRCAOptions)
	}
}

func TestLungBiomarkerTargets(t *testing.T) {
	result, err := newEngine().Evaluate(models.PatientRecord{
		"cancer_type": "lung",
		"stage":       "IV",
		"EGFR":        "positive",
		"KRAS":        "G12C",
		"PDL1":        "60%",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.BiomarkerTargets) != 2 {
		t.Fatalf("expected 2 targeted hits (EGFR, KRAS), got %v", result.BiomarkerTargets)
	}
	if len(result.ImmunotherapyCandidates) == 0 {
		t.Fatal("expected immunotherapy candidates for PDL1-positive patient")
	}
}

func TestFollowUpNeverEmpty(t *testing.T) {
	engine := newEngine()
	for _, cancer := range kb.Registry {
		stage := "I"
		if cancer == "brain" {
			stage = StageLocalized
		}
		result, err := engine.Evaluate(models.PatientRecord{
			"cancer_type": cancer,
			"stage":       stage,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", cancer, err)
		}
		if len(result.FollowUp) == 0 {
			t.Fatalf("%s: follow-up must never be empty", cancer)
		}
	}
}

func TestEvaluateIsRepeatable(t *testing.T) {
	engine := newEngine()
	patient := models.PatientRecord{
		"cancer_type":   "breast",
		"stage":         "II",
		"comorbidities": "cardiac issues",
		"kps":           50,
	}

	first, err := engine.Evaluate(patient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Evaluate(patient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Warnings) != len(second.Warnings) || len(first.Contraindications) != len(second.Contraindications) {
		t.Fatal("repeated evaluation of the same record diverged")
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
