package entity

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for appointment feedback
const (
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)

// AppointmentFeedback is the patient's rating of a completed appointment.
// An appointment has at most one.
type AppointmentFeedback struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	PhysicianID   uuid.UUID `gorm:"type:uuid;not null;index" json:"physician_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	Comment       *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AppointmentFeedback) TableName() string {
	return "appointment_feedback"
}
