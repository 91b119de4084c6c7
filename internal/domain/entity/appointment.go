package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
)

// ActiveAppointmentStatuses are the statuses that occupy a physician's time
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusRescheduled,
}

// DefaultDurationMinutes is used when a booking request omits the duration
const DefaultDurationMinutes = 30

// Appointment is one scheduled encounter between a patient and a physician.
// Rows are never deleted, only transitioned.
type Appointment struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	PhysicianID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_physician_start,priority:1" json:"physician_id"`
	StartTime         time.Time         `gorm:"type:timestamptz;not null;index:idx_appointments_physician_start,priority:2" json:"start_time"`
	EndTime           time.Time         `gorm:"type:timestamptz;not null" json:"end_time"`
	DurationMinutes   int               `gorm:"not null;default:30" json:"duration_minutes"`
	Status            AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	ConsultationNotes *string           `gorm:"type:text" json:"consultation_notes,omitempty"`
	TelemedicineLink  string            `gorm:"type:text;uniqueIndex" json:"telemedicine_link,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient   Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Physician Physician `gorm:"foreignKey:PhysicianID" json:"physician,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsActive reports whether the appointment counts toward conflicts
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusRescheduled
}

// IsTerminal reports whether no further transitions are accepted
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCompleted || a.Status == AppointmentStatusCancelled
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// HasParticipant reports whether the user is the patient or the physician
func (a *Appointment) HasParticipant(userID uuid.UUID) bool {
	return a.Patient.UserID == userID || a.Physician.UserID == userID
}

// Overlaps uses half-open intervals, touching endpoints do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// SetTime moves the appointment, keeping StartTime, EndTime and the duration
// in sync. All instants are stored in UTC.
func (a *Appointment) SetTime(start time.Time) {
	a.StartTime = start.UTC()
	a.EndTime = a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Reschedule moves an active appointment and returns the previous start.
func (a *Appointment) Reschedule(start time.Time) time.Time {
	old := a.StartTime
	a.SetTime(start)
	a.Status = AppointmentStatusRescheduled
	return old
}

// Cancel changes appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}

// Complete changes appointment status to completed
func (a *Appointment) Complete(notes *string) {
	a.Status = AppointmentStatusCompleted
	if notes != nil {
		a.ConsultationNotes = notes
	}
}
