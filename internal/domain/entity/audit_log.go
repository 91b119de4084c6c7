package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one state change of an appointment or physician
// profile. OldValue is empty for creations.
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity,priority:1" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(64);not null;index:idx_audit_logs_entity,priority:2" json:"entity_id"`
	OldValue   JSON       `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue   JSON       `gorm:"type:jsonb" json:"new_value,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// AuditLogFilter narrows an audit trail query. Zero fields match anything.
type AuditLogFilter struct {
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
	Limit      int
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON is a JSONB object column
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB value of type %T", value)
	}

	result := JSON{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Audited entities
const (
	AuditEntityAppointment = "appointment"
	AuditEntityPhysician   = "physician"
)

// Audit actions
const (
	AuditActionAppointmentBook       = "appointment.book"
	AuditActionAppointmentReschedule = "appointment.reschedule"
	AuditActionAppointmentCancel     = "appointment.cancel"
	AuditActionAppointmentComplete   = "appointment.complete"
	AuditActionAppointmentFeedback   = "appointment.feedback"
	AuditActionScheduleUpdate        = "schedule.update"
	AuditActionProfileUpdate         = "profile.update"
	AuditActionPhysicianVerify       = "physician.verify"
)
