package dto

import (
	"time"

	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

// BookAppointmentRequest books a slot. StartTime is RFC 3339; a value
// without an offset is read as UTC. DurationMinutes defaults to 30 when
// omitted; an explicit value must be positive.
type BookAppointmentRequest struct {
	PhysicianID     uuid.UUID `json:"physician_id" validate:"required"`
	StartTime       string    `json:"start_time" validate:"required"`
	DurationMinutes *int      `json:"duration_minutes" validate:"omitempty,gt=0,lte=1440"`
	IdempotencyKey  string    `json:"-" validate:"omitempty,max=128"`
}

type RescheduleAppointmentRequest struct {
	NewStartTime string `json:"new_start_time" validate:"required"`
}

type CompleteAppointmentRequest struct {
	ConsultationNotes *string `json:"consultation_notes" validate:"omitempty,max=10000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                uuid.UUID                `json:"id"`
	PatientID         uuid.UUID                `json:"patient_id"`
	PhysicianID       uuid.UUID                `json:"physician_id"`
	StartTime         time.Time                `json:"start_time"`
	EndTime           time.Time                `json:"end_time"`
	DurationMinutes   int                      `json:"duration_minutes"`
	Status            entity.AppointmentStatus `json:"status"`
	ConsultationNotes *string                  `json:"consultation_notes,omitempty"`
	TelemedicineLink  string                   `json:"telemedicine_link,omitempty"`
	Patient           *PatientSummary          `json:"patient,omitempty"`
	Physician         *PhysicianSummary        `json:"physician,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type PhysicianSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Specialty string    `json:"specialty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SlotCheckResponse struct {
	PhysicianID     uuid.UUID `json:"physician_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Available       bool      `json:"available"`
}
