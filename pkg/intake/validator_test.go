package intake

import (
	"os"
	"testing"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func supportedTypes(cancer string) bool {
	return cancer == "breast" || cancer == "lung"
}

func TestValidateRejectsEmptyRecord(t *testing.T) {
	v := NewValidator(supportedTypes)
	err := v.Validate(models.PatientRecord{})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateRejectsMissingCancerType(t *testing.T) {
	v := NewValidator(supportedTypes)
	err := v.Validate(models.PatientRecord{"stage": "II"})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	v := NewValidator(supportedTypes)
	err := v.Validate(models.PatientRecord{"cancer_type": "prostate"})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateAcceptsSupportedType(t *testing.T) {
	v := NewValidator(supportedTypes)
	if err := v.Validate(models.PatientRecord{"cancer_type": "Breast", "stage": "I"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeDropsIrrelevantMarkers(t *testing.T) {
	v := NewValidator(supportedTypes)
	patient := models.PatientRecord{
		"cancer_type": "lung",
		"stage":       "IV",
		"EGFR":        "positive",
		"HER2":        "positive",
		"age":         64,
	}

	out := v.Normalize(patient)
	if _, ok := out["HER2"]; ok {
		t.Fatal("HER2 must be dropped from a lung record")
	}
	if out.GetString("EGFR") != "positive" {
		t.Fatal("EGFR must be kept on a lung record")
	}
	if out.GetInt("age", 0) != 64 {
		t.Fatal("non-marker fields must be preserved")
	}
	if _, ok := patient["HER2"]; !ok {
		t.Fatal("normalize must not mutate the input record")
	}
}
