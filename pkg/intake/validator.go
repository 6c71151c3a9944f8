package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
)

var (
	errMissingCancerType = errors.New("cancer_type required")
	errEmptyRecord       = errors.New("empty patient record")
	errUnsupportedType   = errors.New("cancer type not supported")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// hormone receptor and mutation markers only collected for specific types;
// keys listed here are dropped from records of any other cancer type.
var markerRelevance = map[string][]string{
	"ER":   {"breast"},
	"PR":   {"breast"},
	"HER2": {"breast"},
	"BRCA": {"breast"},
	"EGFR": {"lung"},
	"ALK":  {"lung"},
	"KRAS": {"lung"},
}

// Validator checks a patient record at the pipeline boundary. The record
// shape is cancer-type dependent, so validation is limited to the keys the
// rule engine cannot proceed without; everything else stays tolerant.
type Validator struct {
	supported func(cancerType string) bool
}

func NewValidator(supported func(cancerType string) bool) *Validator {
	return &Validator{supported: supported}
}

func (v *Validator) Validate(patient models.PatientRecord) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}
	if len(patient) == 0 {
		return ValidationError{reason: errEmptyRecord}
	}

	cancer := patient.CancerType()
	if cancer == "" {
		return ValidationError{reason: errMissingCancerType}
	}
	if v.supported != nil && !v.supported(cancer) {
		return ValidationError{reason: fmt.Errorf("'%s': %w", cancer, errUnsupportedType)}
	}

	return nil
}

// Normalize returns a copy of the record with biomarker keys irrelevant to
// the cancer type removed. Dropped keys are logged, never fatal.
func (v *Validator) Normalize(patient models.PatientRecord) models.PatientRecord {
	cancer := patient.CancerType()
	out := make(models.PatientRecord, len(patient))
	for key, value := range patient {
		if relevant, ok := markerRelevance[key]; ok && !contains(relevant, cancer) {
			logger.Log.WithFields(map[string]interface{}{
				"key":         key,
				"cancer_type": cancer,
			}).Debug("dropping biomarker irrelevant to cancer type")
			continue
		}
		out[key] = value
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
