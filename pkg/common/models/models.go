package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PatientRecord is the attribute map produced upstream (intake form, report
// parser, test harness). Keys vary by cancer type, so access goes through
// tolerant typed getters rather than a fixed schema.
type PatientRecord map[string]interface{}

func (p PatientRecord) GetString(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (p PatientRecord) GetInt(key string, defaultValue int) int {
	if p == nil {
		return defaultValue
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (p PatientRecord) CancerType() string {
	return strings.ToLower(p.GetString("cancer_type"))
}

func (p PatientRecord) Stage() string {
	return strings.ToUpper(p.GetString("stage"))
}

// EvidenceItem is one retrieved passage plus provenance. Score is the
// retrieval distance for local matches (lower is closer) and zero for
// literature results.
type EvidenceItem struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score,omitempty"`
}

// RulesResult is the rule engine output: stage rule fields plus derived
// adjustments. Transient, rebuilt per request.
type RulesResult struct {
	PrimaryTreatments       []string          `json:"primary_treatments"`
	Surgery                 []string          `json:"surgery"`
	Radiation               []string          `json:"radiation"`
	Systemic                []string          `json:"systemic"`
	Targeted                map[string]string `json:"targeted"`
	Immunotherapy           []string          `json:"immunotherapy"`
	AlternativeOptions      []string          `json:"alternative_options"`
	FollowUp                []string          `json:"follow_up"`
	Contraindications       []string          `json:"contraindications"`
	Warnings                []string          `json:"warnings"`
	PerformanceAdjustment   string            `json:"performance_adjustment"`
	BRCAOptions             []string          `json:"brca_options,omitempty"`
	ResidualDisease         []string          `json:"residual_disease,omitempty"`
	BiomarkerTargets        []string          `json:"biomarker_targets,omitempty"`
	ImmunotherapyCandidates []string          `json:"immunotherapy_candidates,omitempty"`
	Evidence                []string          `json:"evidence,omitempty"`
	CancerType              string            `json:"cancer_type"`
	Stage                   string            `json:"stage"`
}

// PlanOrigin distinguishes a parsed model response from the deterministic
// derivation. The derived path is designed behavior, not an error path.
type PlanOrigin string

const (
	OriginGenerated PlanOrigin = "generated"
	OriginDerived   PlanOrigin = "derived"
)

type PlanResult struct {
	PrimaryTreatment  string   `json:"primary_treatment"`
	ClinicalRationale string   `json:"clinical_rationale"`
	Alternatives      []string `json:"alternatives"`
	SafetyAlerts      []string `json:"safety_alerts"`
	FollowUp          string   `json:"follow_up"`
}

type SurvivalEstimate struct {
	MedianMonths int `json:"median_months"`
	RangeMin     int `json:"range_min"`
	RangeMax     int `json:"range_max"`
}

type OutcomeResult struct {
	OverallSurvival         SurvivalEstimate   `json:"overall_survival"`
	ProgressionFreeSurvival SurvivalEstimate   `json:"progression_free_survival"`
	SideEffectRisks         map[string]float64 `json:"side_effect_risks"`
	QualityOfLifeScore      float64            `json:"quality_of_life_score"`
	Confidence              float64            `json:"confidence"`
}

type RecommendRequest struct {
	Patient PatientRecord `json:"patient"`
}

type RecommendResponse struct {
	PlanID   string         `json:"plan_id"`
	Plan     PlanResult     `json:"plan"`
	Origin   PlanOrigin     `json:"origin"`
	Evidence []EvidenceItem `json:"evidence"`
}

type OutcomeResponse struct {
	OutcomeID string         `json:"outcome_id"`
	Outcome   OutcomeResult  `json:"outcome"`
	Origin    PlanOrigin     `json:"origin"`
	Evidence  []EvidenceItem `json:"evidence"`
}

// Event is the Kafka envelope shared across services.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // plan.generated, outcome.generated
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
