package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oncoplan-ai/platform/pkg/common/models"
)

const (
	maxPromptChars   = 6000
	maxSnippetChars  = 500
	maxPatientFields = 24
)

// flattenRules renders the rules record one line per treatment category in a
// fixed order so prompts stay stable across requests.
func flattenRules(rules models.RulesResult) string {
	var lines []string

	for _, t := range rules.PrimaryTreatments {
		lines = append(lines, "Primary treatment: "+t)
	}
	if len(rules.Surgery) > 0 {
		lines = append(lines, "Surgery options: "+strings.Join(rules.Surgery, ", "))
	}
	if len(rules.Radiation) > 0 {
		lines = append(lines, "Radiation options: "+strings.Join(rules.Radiation, ", "))
	}
	for _, t := range rules.Systemic {
		lines = append(lines, "Systemic therapy: "+t)
	}
	for _, marker := range sortedKeys(rules.Targeted) {
		lines = append(lines, fmt.Sprintf("Targeted therapy (%s): %s", marker, rules.Targeted[marker]))
	}
	for _, t := range rules.BiomarkerTargets {
		lines = append(lines, "Biomarker-targeted therapy: "+t)
	}
	if len(rules.ImmunotherapyCandidates) > 0 {
		lines = append(lines, "Immunotherapy candidates: "+strings.Join(rules.ImmunotherapyCandidates, ", "))
	} else if len(rules.Immunotherapy) > 0 {
		lines = append(lines, "Immunotherapy options: "+strings.Join(rules.Immunotherapy, ", "))
	}
	if rules.PerformanceAdjustment != "" {
		lines = append(lines, "Performance adjustment: "+rules.PerformanceAdjustment)
	}
	for _, w := range rules.Warnings {
		lines = append(lines, "Warning: "+w)
	}
	if len(rules.ResidualDisease) > 0 {
		lines = append(lines, "Residual disease option: "+strings.Join(rules.ResidualDisease, ", "))
	}
	if len(rules.BRCAOptions) > 0 {
		lines = append(lines, "BRCA option: "+strings.Join(rules.BRCAOptions, ", "))
	}
	if len(rules.AlternativeOptions) > 0 {
		lines = append(lines, "Alternatives: "+strings.Join(rules.AlternativeOptions, ", "))
	}
	if len(rules.Contraindications) > 0 {
		lines = append(lines, "Contraindications: "+strings.Join(rules.Contraindications, "; "))
	}
	for _, f := range rules.FollowUp {
		lines = append(lines, "Follow-up: "+f)
	}

	return strings.Join(lines, "\n")
}

func flattenPatient(patient models.PatientRecord) string {
	keys := make([]string, 0, len(patient))
	for key := range patient {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > maxPatientFields {
		keys = keys[:maxPatientFields]
	}

	var lines []string
	for _, key := range keys {
		if value := patient.GetString(key); value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", key, value))
		}
	}
	return strings.Join(lines, "\n")
}

func flattenEvidence(evidence []models.EvidenceItem) string {
	var lines []string
	for i, item := range evidence {
		text := item.Text
		if len(text) > maxSnippetChars {
			text = text[:maxSnippetChars]
		}
		lines = append(lines, fmt.Sprintf("[%d] %s", i+1, text))
	}
	return strings.Join(lines, "\n")
}

func buildPlanPrompt(patient models.PatientRecord, rules models.RulesResult, evidence []models.EvidenceItem) string {
	prompt := fmt.Sprintf(`You are an oncology clinical summarizer.
Rewrite the clinical notes below into a treatment plan.

Do NOT add new drugs.
Do NOT invent treatments.
Only reformat what is provided. When a regimen is named with an acronym and
a descriptive name in parentheses, include the full descriptive name.

PATIENT:
%s

CLINICAL NOTES:
%s

SUPPORTING EVIDENCE:
%s

Respond with a single JSON object with exactly these keys:
"primary_treatment", "clinical_rationale", "alternatives" (array of strings),
"safety_alerts" (array of strings), "follow_up".`,
		flattenPatient(patient), flattenRules(rules), flattenEvidence(evidence))

	return truncate(prompt, maxPromptChars)
}

func buildOutcomePrompt(patient models.PatientRecord, evidence []models.EvidenceItem) string {
	prompt := fmt.Sprintf(`You are an oncology outcomes estimator.
Project expected outcomes for the patient below using only the supporting
evidence provided. Do not invent trial data.

PATIENT:
%s

SUPPORTING EVIDENCE:
%s

Respond with a single JSON object with exactly these keys:
"overall_survival" {"median_months", "range_min", "range_max"},
"progression_free_survival" {"median_months", "range_min", "range_max"},
"side_effect_risks" (map of side effect name to percent),
"quality_of_life_score", "confidence".`,
		flattenPatient(patient), flattenEvidence(evidence))

	return truncate(prompt, maxPromptChars)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
