package plans

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oncoplan-ai/platform/pkg/common/models"
)

var ErrNotFound = errors.New("plan not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PlanRecord{}, &OutcomeRecord{}, &AuditEntry{})
}

// SavePlan persists a recommendation and returns the stored record.
func (r *Repository) SavePlan(ctx context.Context, patient models.PatientRecord, rules models.RulesResult, plan models.PlanResult, origin models.PlanOrigin, evidence []models.EvidenceItem) (*PlanRecord, error) {
	record := &PlanRecord{
		ID:               uuid.New().String(),
		PatientRef:       patient.GetString("patient_id"),
		PatientSnapshot:  datatypes.JSONMap(patient),
		CancerType:       rules.CancerType,
		Stage:            rules.Stage,
		PrimaryTreatment: plan.PrimaryTreatment,
		Rationale:        plan.ClinicalRationale,
		Alternatives:     mustJSON(plan.Alternatives),
		SafetyAlerts:     mustJSON(plan.SafetyAlerts),
		FollowUp:         plan.FollowUp,
		Evidence:         mustJSON(evidence),
		Origin:           string(origin),
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) SaveOutcome(ctx context.Context, patient models.PatientRecord, outcome models.OutcomeResult, origin models.PlanOrigin) (*OutcomeRecord, error) {
	record := &OutcomeRecord{
		ID:              uuid.New().String(),
		PatientSnapshot: datatypes.JSONMap(patient),
		CancerType:      patient.CancerType(),
		Payload:         mustJSON(outcome),
		Origin:          string(origin),
		CreatedAt:       time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	var record PlanRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) ListPlans(ctx context.Context, cancerType string, limit int) ([]PlanRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if cancerType != "" {
		query = query.Where("cancer_type = ?", cancerType)
	}
	var records []PlanRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByPatient returns the most recent plans carrying the given patient
// reference. Records saved from snapshots without a patient_id are never
// matched here.
func (r *Repository) ListByPatient(ctx context.Context, patientRef string, limit int) ([]PlanRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []PlanRecord
	err := r.db.WithContext(ctx).
		Where("patient_ref = ?", patientRef).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RecordAudit appends one audit row. Used by the audit worker.
func (r *Repository) RecordAudit(ctx context.Context, event models.Event) error {
	entityID, _ := event.Data["plan_id"].(string)
	if entityID == "" {
		entityID, _ = event.Data["outcome_id"].(string)
	}
	entry := &AuditEntry{
		ID:        uuid.New().String(),
		EventType: event.Type,
		Source:    event.Source,
		EntityID:  entityID,
		Payload:   datatypes.JSONMap(event.Data),
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func mustJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(raw)
}
