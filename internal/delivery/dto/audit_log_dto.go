package dto

import (
	"time"

	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AuditLogQuery filters the audit trail. Limit defaults to 100.
type AuditLogQuery struct {
	EntityType string     `validate:"omitempty,oneof=appointment physician"`
	EntityID   string     `validate:"omitempty,max=64"`
	UserID     *uuid.UUID `validate:"omitempty"`
	Limit      int        `validate:"omitempty,gt=0,lte=500"`
}

type AuditLogResponse struct {
	ID         int64       `json:"id"`
	UserID     *uuid.UUID  `json:"user_id,omitempty"`
	Action     string      `json:"action"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	OldValue   entity.JSON `json:"old_value,omitempty"`
	NewValue   entity.JSON `json:"new_value,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
