package planner

import (
	"strings"

	"github.com/oncoplan-ai/platform/pkg/common/models"
)

const (
	defaultPrimaryTreatment = "Standard of Care Protocol"
	defaultAlternative      = "Discuss additional options with the treating oncology team"
	defaultSafetyAlert      = "Review treatment plan with a multidisciplinary tumor board before starting therapy"
)

// derivePlan assembles a plan directly from the rules record. It is a pure
// function of its input, so the same record always yields the same plan.
func derivePlan(rules models.RulesResult) models.PlanResult {
	plan := models.PlanResult{
		PrimaryTreatment:  pickPrimary(rules),
		ClinicalRationale: rules.PerformanceAdjustment,
		Alternatives:      rules.AlternativeOptions,
		SafetyAlerts:      combineAlerts(rules),
		FollowUp:          strings.Join(rules.FollowUp, "; "),
	}
	if len(plan.Alternatives) == 0 {
		plan.Alternatives = []string{defaultAlternative}
	}
	if len(plan.SafetyAlerts) == 0 {
		plan.SafetyAlerts = []string{defaultSafetyAlert}
	}
	return plan
}

func pickPrimary(rules models.RulesResult) string {
	if len(rules.PrimaryTreatments) > 0 {
		return rules.PrimaryTreatments[0]
	}
	if len(rules.BiomarkerTargets) > 0 {
		return rules.BiomarkerTargets[0]
	}
	for _, marker := range sortedKeys(rules.Targeted) {
		return rules.Targeted[marker]
	}
	if len(rules.ImmunotherapyCandidates) > 0 {
		return rules.ImmunotherapyCandidates[0]
	}
	if len(rules.Immunotherapy) > 0 {
		return rules.Immunotherapy[0]
	}
	return defaultPrimaryTreatment
}

func combineAlerts(rules models.RulesResult) []string {
	alerts := make([]string, 0, len(rules.Warnings)+len(rules.Contraindications))
	alerts = append(alerts, rules.Warnings...)
	alerts = append(alerts, rules.Contraindications...)
	return alerts
}

// deriveOutcomes projects outcomes from the tolerance score. The score maps
// linearly onto survival medians and inversely onto side-effect risks, with
// ranges spanning half to one-and-a-half times the median.
func deriveOutcomes(tolerance float64) models.OutcomeResult {
	osMedian := 12 + int(48*tolerance)
	pfsMedian := osMedian / 2
	if pfsMedian < 3 {
		pfsMedian = 3
	}

	return models.OutcomeResult{
		OverallSurvival: models.SurvivalEstimate{
			MedianMonths: osMedian,
			RangeMin:     osMedian / 2,
			RangeMax:     osMedian + osMedian/2,
		},
		ProgressionFreeSurvival: models.SurvivalEstimate{
			MedianMonths: pfsMedian,
			RangeMin:     pfsMedian / 2,
			RangeMax:     pfsMedian + pfsMedian/2,
		},
		SideEffectRisks: map[string]float64{
			"fatigue":    round1(30 + 45*(1-tolerance)),
			"nausea":     round1(20 + 40*(1-tolerance)),
			"cytopenia":  round1(15 + 35*(1-tolerance)),
			"neuropathy": round1(10 + 25*(1-tolerance)),
		},
		QualityOfLifeScore: round1(55 + 35*tolerance),
		Confidence:         round2(tolerance),
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
