package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oncoplan-ai/platform/pkg/common/kafka"
	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
	"github.com/oncoplan-ai/platform/pkg/intake"
	"github.com/oncoplan-ai/platform/pkg/observability/metrics"
	"github.com/oncoplan-ai/platform/pkg/outcome"
	"github.com/oncoplan-ai/platform/pkg/plans"
	"github.com/oncoplan-ai/platform/pkg/rag"
	"github.com/oncoplan-ai/platform/pkg/redact"
	"github.com/oncoplan-ai/platform/pkg/rules"
)

const serviceName = "planner-service"

// Service runs the planning pipeline: validate, redact, evaluate rules,
// retrieve evidence, then generate a plan or derive one from the rules.
// Repository and producer are optional; persistence and event publishing
// never fail a request.
type Service struct {
	validator *intake.Validator
	redactor  *redact.Redactor
	engine    *rules.Engine
	retriever *rag.HybridRetriever
	generator *Generator
	scorer    *outcome.RiskScorer
	repo      *plans.Repository
	producer  *kafka.Producer
}

func NewService(
	validator *intake.Validator,
	redactor *redact.Redactor,
	engine *rules.Engine,
	retriever *rag.HybridRetriever,
	generator *Generator,
	scorer *outcome.RiskScorer,
	repo *plans.Repository,
	producer *kafka.Producer,
) *Service {
	return &Service{
		validator: validator,
		redactor:  redactor,
		engine:    engine,
		retriever: retriever,
		generator: generator,
		scorer:    scorer,
		repo:      repo,
		producer:  producer,
	}
}

func (s *Service) Recommend(ctx context.Context, patient models.PatientRecord) (*models.RecommendResponse, error) {
	record, err := s.prepare(patient)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Evaluate(record)
	if err != nil {
		metrics.IncRuleRejection()
		return nil, err
	}

	queries := planQueries(result, record)
	evidence := s.retriever.Retrieve(ctx, result.CancerType, queries[0], queries)
	s.trackEvidence(evidence)

	plan, origin := s.planFor(ctx, record, result, evidence)

	response := &models.RecommendResponse{
		Plan:     plan,
		Origin:   origin,
		Evidence: evidence,
	}

	if s.repo != nil {
		saved, err := s.repo.SavePlan(ctx, record, result, plan, origin, evidence)
		if err != nil {
			logger.WithComponent("planner").WithError(err).Error("failed to persist plan")
		} else {
			response.PlanID = saved.ID
		}
	}

	s.publish(ctx, "plan.generated", map[string]interface{}{
		"plan_id":           response.PlanID,
		"cancer_type":       result.CancerType,
		"stage":             result.Stage,
		"origin":            string(origin),
		"primary_treatment": plan.PrimaryTreatment,
	})

	metrics.IncRecommendation()
	return response, nil
}

func (s *Service) PredictOutcomes(ctx context.Context, patient models.PatientRecord) (*models.OutcomeResponse, error) {
	record, err := s.prepare(patient)
	if err != nil {
		return nil, err
	}

	queries := outcomeQueries(record)
	evidence := s.retriever.Retrieve(ctx, record.CancerType(), queries[0], queries)
	s.trackEvidence(evidence)

	projection, origin := s.outcomesFor(ctx, record, evidence)

	response := &models.OutcomeResponse{
		Outcome:  projection,
		Origin:   origin,
		Evidence: evidence,
	}

	if s.repo != nil {
		saved, err := s.repo.SaveOutcome(ctx, record, projection, origin)
		if err != nil {
			logger.WithComponent("planner").WithError(err).Error("failed to persist outcome")
		} else {
			response.OutcomeID = saved.ID
		}
	}

	s.publish(ctx, "outcome.generated", map[string]interface{}{
		"outcome_id":  response.OutcomeID,
		"cancer_type": record.CancerType(),
		"origin":      string(origin),
	})

	metrics.IncOutcome()
	return response, nil
}

// prepare validates the incoming record, strips irrelevant biomarkers and
// masks identifiers. Everything downstream sees the redacted record only.
func (s *Service) prepare(patient models.PatientRecord) (models.PatientRecord, error) {
	if err := s.validator.Validate(patient); err != nil {
		metrics.IncRuleRejection()
		return nil, err
	}
	record := s.validator.Normalize(patient)
	if s.redactor != nil {
		record = s.redactor.Record(record)
	}
	return record, nil
}

func (s *Service) planFor(ctx context.Context, record models.PatientRecord, result models.RulesResult, evidence []models.EvidenceItem) (models.PlanResult, models.PlanOrigin) {
	plan, err := s.generator.GeneratePlan(ctx, record, result, evidence)
	if err == nil {
		return plan, models.OriginGenerated
	}
	if !errors.Is(err, ErrDegenerate) {
		logger.WithComponent("planner").WithError(err).Error("unexpected generation error")
	}
	metrics.IncGenerationFailure()
	metrics.IncDerivedPlan()
	logger.WithComponent("planner").WithError(err).WithField("cancer_type", result.CancerType).Info("deriving plan from rules")
	return derivePlan(result), models.OriginDerived
}

func (s *Service) outcomesFor(ctx context.Context, record models.PatientRecord, evidence []models.EvidenceItem) (models.OutcomeResult, models.PlanOrigin) {
	projection, err := s.generator.GenerateOutcomes(ctx, record, evidence)
	if err == nil {
		return projection, models.OriginGenerated
	}
	metrics.IncGenerationFailure()
	logger.WithComponent("planner").WithError(err).Info("deriving outcomes from tolerance model")
	return deriveOutcomes(s.tolerance(record)), models.OriginDerived
}

// tolerance scores treatment tolerance from age and performance status.
// Scoring problems fall back to a neutral 0.5.
func (s *Service) tolerance(record models.PatientRecord) float64 {
	features := map[string]float64{
		"age_norm": float64(record.GetInt("age", 60)) / 100,
		"kps_norm": float64(record.GetInt("kps", 100)) / 100,
		"ecog":     float64(record.GetInt("ecog", 0)),
	}
	score, err := s.scorer.Score("tolerance", features)
	if err != nil {
		logger.WithComponent("planner").WithError(err).Warn("tolerance scoring failed")
		return 0.5
	}
	return score
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(ctx, eventType, serviceName, data); err != nil {
		logger.WithComponent("planner").WithError(err).WithField("event_type", eventType).Warn("event publish failed")
	}
}

func (s *Service) trackEvidence(evidence []models.EvidenceItem) {
	var local, literature bool
	for _, item := range evidence {
		if item.Source == "PubMed" {
			literature = true
		} else {
			local = true
		}
	}
	if !local {
		metrics.IncLocalRetrievalEmpty()
	}
	if literature {
		metrics.IncLiteratureRetrievalHit()
	}
}

// planQueries builds the literature queries: the staged treatment query
// first, then receptor-status variants when the record carries them.
func planQueries(result models.RulesResult, record models.PatientRecord) []string {
	queries := []string{fmt.Sprintf("%s stage %s treatment", result.CancerType, result.Stage)}
	if er := record.GetString("ER"); er != "" {
		queries = append(queries, fmt.Sprintf("%s cancer ER %s treatment", result.CancerType, strings.ToLower(er)))
	}
	if her2 := record.GetString("HER2"); her2 != "" {
		queries = append(queries, fmt.Sprintf("%s cancer HER2 %s treatment", result.CancerType, strings.ToLower(her2)))
	}
	return queries
}

func outcomeQueries(record models.PatientRecord) []string {
	cancer := record.CancerType()
	queries := []string{fmt.Sprintf("%s cancer survival outcomes", cancer)}
	if stage := record.Stage(); stage != "" {
		queries = append(queries, fmt.Sprintf("%s cancer stage %s prognosis", cancer, strings.ToLower(stage)))
	}
	return queries
}
