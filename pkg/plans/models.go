package plans

import (
	"time"

	"gorm.io/datatypes"
)

// PlanRecord is the persisted form of one recommendation response. The
// patient snapshot is stored post-redaction only.
type PlanRecord struct {
	ID               string            `gorm:"type:uuid;primaryKey" json:"id"`
	PatientRef       string            `gorm:"index" json:"patient_ref,omitempty"`
	PatientSnapshot  datatypes.JSONMap `gorm:"type:jsonb" json:"patient_snapshot"`
	CancerType       string            `gorm:"index" json:"cancer_type"`
	Stage            string            `json:"stage"`
	PrimaryTreatment string            `json:"primary_treatment"`
	Rationale        string            `json:"rationale"`
	Alternatives     datatypes.JSON    `gorm:"type:jsonb" json:"alternatives"`
	SafetyAlerts     datatypes.JSON    `gorm:"type:jsonb" json:"safety_alerts"`
	FollowUp         string            `json:"follow_up"`
	Evidence         datatypes.JSON    `gorm:"type:jsonb" json:"evidence"`
	Origin           string            `gorm:"index" json:"origin"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (PlanRecord) TableName() string { return "plan_records" }

// OutcomeRecord stores one outcome projection.
type OutcomeRecord struct {
	ID              string            `gorm:"type:uuid;primaryKey" json:"id"`
	PatientSnapshot datatypes.JSONMap `gorm:"type:jsonb" json:"patient_snapshot"`
	CancerType      string            `gorm:"index" json:"cancer_type"`
	Payload         datatypes.JSON    `gorm:"type:jsonb" json:"payload"`
	Origin          string            `json:"origin"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (OutcomeRecord) TableName() string { return "outcome_records" }

// AuditEntry is one row in the audit trail, written by the audit worker from
// plan events.
type AuditEntry struct {
	ID        string            `gorm:"type:uuid;primaryKey" json:"id"`
	EventType string            `gorm:"index" json:"event_type"`
	Source    string            `json:"source"`
	EntityID  string            `gorm:"index" json:"entity_id"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb" json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
