package repository

import (
	"time"

	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByPhysicianID(db *gorm.DB, physicianID uuid.UUID) ([]entity.Appointment, error)
	// FindActiveOverlapping returns active appointments of the physician whose
	// [start, end) intersects the given range. excludeID may be uuid.Nil.
	FindActiveOverlapping(db *gorm.DB, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error)
	// FindActiveStartingBetween returns active appointments with from <= start < to,
	// preloading patient and physician.
	FindActiveStartingBetween(db *gorm.DB, from, to time.Time) ([]entity.Appointment, error)
	// UpdateSchedule writes start, end and status of an active appointment.
	// Returns affected rows.
	UpdateSchedule(db *gorm.DB, appointment *entity.Appointment) (int64, error)
	// UpdateStatus transitions only when the current status is one of from.
	// Returns affected rows.
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, from []entity.AppointmentStatus, notes *string) (int64, error)
}
