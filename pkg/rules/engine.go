package rules

import (
	"strings"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
	"github.com/oncoplan-ai/platform/pkg/kb"
)

const (
	StageLocalized = "LOCALIZED"
	StageRecurrent = "RECURRENT"

	frailtyAdjustment = "Patient considered frail. Prioritize palliative intent, hypofractionated radiation, or monotherapy to minimize toxicity."
	frailtyWarning    = "Low performance status detected. Standard aggressive protocols may be poorly tolerated."
)

// Engine evaluates a patient record against the knowledge base. Evaluation
// is a pure function of (patient, KB): no hidden state, repeatable.
type Engine struct {
	kb *kb.Store
}

func NewEngine(store *kb.Store) *Engine {
	return &Engine{kb: store}
}

func (e *Engine) Evaluate(patient models.PatientRecord) (models.RulesResult, error) {
	cancer := patient.CancerType()

	stage := e.resolveStage(cancer, patient)

	entry, err := e.kb.Entry(cancer)
	if err != nil {
		return models.RulesResult{}, UnsupportedCancerError{CancerType: cancer}
	}

	rule, ok := entry.Stages[stage]
	if !ok {
		return models.RulesResult{}, UnsupportedStageError{CancerType: cancer, Stage: stage}
	}

	common := e.kb.Common()

	result := models.RulesResult{
		PrimaryTreatments:     cloneStrings(rule.PrimaryTreatments),
		Surgery:               cloneStrings(rule.Surgery),
		Radiation:             cloneStrings(rule.Radiation),
		Systemic:              cloneStrings(rule.Systemic),
		Targeted:              cloneMap(rule.Targeted),
		Immunotherapy:         cloneStrings(rule.Immunotherapy),
		AlternativeOptions:    cloneStrings(rule.Alternatives),
		FollowUp:              cloneStrings(rule.FollowUp),
		Contraindications:     []string{},
		Warnings:              []string{},
		PerformanceAdjustment: defaultAdjustment(cancer, stage),
		Evidence:              cloneStrings(common.Evidence),
		CancerType:            cancer,
		Stage:                 stage,
	}

	e.applyPerformanceStatus(patient, &result)
	e.applyComorbidities(patient, common, &result)
	e.applyBiomarkers(cancer, patient, rule, &result)

	if len(result.FollowUp) == 0 {
		result.FollowUp = cloneStrings(e.kb.StandardFollowUp())
	}

	return result, nil
}

// resolveStage collapses brain staging to {LOCALIZED, RECURRENT} from
// recurrence signals; every other type uses the upper-cased stage verbatim,
// defaulting to "I" with a non-fatal warning when absent.
func (e *Engine) resolveStage(cancer string, patient models.PatientRecord) string {
	stage := patient.Stage()

	if cancer == "brain" {
		if stage == StageLocalized || stage == StageRecurrent {
			return stage
		}
		diagnosis := strings.ToUpper(patient.GetString("diagnosis"))
		if patient.GetString("prior_radiation") == "yes" || strings.Contains(diagnosis, StageRecurrent) {
			return StageRecurrent
		}
		return StageLocalized
	}

	if stage == "" {
		logger.Log.WithField("cancer_type", cancer).Warn("No stage provided, defaulting to stage I")
		return "I"
	}
	return stage
}

// applyPerformanceStatus replaces (not appends) the default rationale when a
// frailty signal is present: this is a clinical override.
func (e *Engine) applyPerformanceStatus(patient models.PatientRecord, result *models.RulesResult) {
	kps := patient.GetInt("kps", 100)
	ecog := patient.GetInt("ecog", 0)

	if kps < 70 || ecog >= 2 {
		result.PerformanceAdjustment = frailtyAdjustment
		result.Warnings = append(result.Warnings, frailtyWarning)
	}
}

// applyComorbidities scans the free-text comorbidity field for keyword
// families. Matches are additive: every matching category appends its
// contraindications and warning.
func (e *Engine) applyComorbidities(patient models.PatientRecord, common kb.Common, result *models.RulesResult) {
	comorbidities := strings.ToLower(patient.GetString("comorbidities"))
	if comorbidities == "" {
		return
	}

	if strings.Contains(comorbidities, "heart") || strings.Contains(comorbidities, "cardiac") {
		result.Contraindications = append(result.Contraindications, common.Contraindications["cardiac"]...)
		result.Warnings = append(result.Warnings, "Cardiac history detected. Avoid cardiotoxic agents like Anthracyclines or Trastuzumab without cardiology clearance.")
	}

	if strings.Contains(comorbidities, "kidney") || strings.Contains(comorbidities, "renal") || strings.Contains(comorbidities, "dialysis") {
		result.Contraindications = append(result.Contraindications, common.Contraindications["renal"]...)
		result.Warnings = append(result.Warnings, "Renal impairment detected. Dose-adjustment required for platinum-based agents or other renally cleared drugs.")
	}

	if strings.Contains(comorbidities, "diabetes") {
		result.Warnings = append(result.Warnings, "Diabetic history detected. Monitor glucose levels during steroid-heavy phases of treatment.")
	}
}

// applyBiomarkers adds cancer-specific augmentations. All additions are
// optional: a missing sub-block or biomarker is silently omitted.
func (e *Engine) applyBiomarkers(cancer string, patient models.PatientRecord, rule kb.StageRule, result *models.RulesResult) {
	switch cancer {
	case "breast":
		if strings.ToLower(patient.GetString("BRCA")) == "positive" && len(rule.BRCA) > 0 {
			result.BRCAOptions = cloneStrings(rule.BRCA)
		}
		if strings.ToLower(patient.GetString("residual")) == "yes" && len(rule.Residual) > 0 {
			result.ResidualDisease = cloneStrings(rule.Residual)
		}
	case "lung":
		var hits []string
		for _, marker := range []string{"EGFR", "ALK", "KRAS"} {
			if patient.GetString(marker) == "" {
				continue
			}
			if therapy, ok := rule.Targeted[marker]; ok && therapy != "" {
				hits = append(hits, therapy)
			}
		}
		result.BiomarkerTargets = hits

		if patient.GetString("PDL1") != "" && len(rule.Immunotherapy) > 0 {
			result.ImmunotherapyCandidates = cloneStrings(rule.Immunotherapy)
		}
	}
}

func defaultAdjustment(cancer, stage string) string {
	return "Protocol optimized for " + titleCase(cancer) + " " + titleCase(stage) + " based on standard of care guidelines."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func cloneMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
