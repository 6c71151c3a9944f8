package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Counters tracked by the planning service. Exposed in Prometheus text
// format without pulling in a client library.
var (
	recommendationsServed  atomic.Int64
	derivedPlans           atomic.Int64
	generationFailures     atomic.Int64
	outcomesServed         atomic.Int64
	ruleRejections         atomic.Int64
	localRetrievalEmpty    atomic.Int64
	literatureRetrievalHit atomic.Int64
)

func IncRecommendation()         { recommendationsServed.Add(1) }
func IncDerivedPlan()            { derivedPlans.Add(1) }
func IncGenerationFailure()      { generationFailures.Add(1) }
func IncOutcome()                { outcomesServed.Add(1) }
func IncRuleRejection()          { ruleRejections.Add(1) }
func IncLocalRetrievalEmpty()    { localRetrievalEmpty.Add(1) }
func IncLiteratureRetrievalHit() { literatureRetrievalHit.Add(1) }

func WritePrometheus(w io.Writer) {
	writeCounter(w, "oncoplan_recommendations_served_total", "Recommendations returned to clients.", recommendationsServed.Load())
	writeCounter(w, "oncoplan_derived_plans_total", "Plans assembled by the deterministic derivation.", derivedPlans.Load())
	writeCounter(w, "oncoplan_generation_failures_total", "Model replies rejected as degenerate.", generationFailures.Load())
	writeCounter(w, "oncoplan_outcomes_served_total", "Outcome projections returned to clients.", outcomesServed.Load())
	writeCounter(w, "oncoplan_rule_rejections_total", "Requests rejected by validation or rule lookup.", ruleRejections.Load())
	writeCounter(w, "oncoplan_local_retrieval_empty_total", "Guideline index queries that returned nothing.", localRetrievalEmpty.Load())
	writeCounter(w, "oncoplan_literature_retrieval_hits_total", "Requests enriched with literature evidence.", literatureRetrievalHit.Load())
}

func writeCounter(w io.Writer, name, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
}
