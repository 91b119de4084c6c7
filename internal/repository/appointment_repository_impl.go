package repository

import (
	"errors"
	"time"

	"medical-scheduling/internal/domain/entity"
	domainRepo "medical-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Patient").Preload("Physician").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Physician").
		Where("patient_id = ?", patientID).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPhysicianID(db *gorm.DB, physicianID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Patient").
		Where("physician_id = ?", physicianID).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveOverlapping(db *gorm.DB, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Where("physician_id = ? AND status IN ?", physicianID, entity.ActiveAppointmentStatuses).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Order("start_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveStartingBetween(db *gorm.DB, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Patient").Preload("Physician").
		Where("status IN ?", entity.ActiveAppointmentStatuses).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateSchedule moves an appointment that is still active. Returns
// affected rows: 0 means it was completed or cancelled meanwhile.
func (r *appointmentRepository) UpdateSchedule(db *gorm.DB, appointment *entity.Appointment) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", appointment.ID, entity.ActiveAppointmentStatuses).
		Updates(map[string]interface{}{
			"start_time": appointment.StartTime,
			"end_time":   appointment.EndTime,
			"status":     appointment.Status,
		})
	return result.RowsAffected, result.Error
}

// UpdateStatus atomically transitions an appointment ONLY if its current
// status is one of from. Returns affected rows: 0 means the guard failed.
func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, from []entity.AppointmentStatus, notes *string) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if notes != nil {
		updates["consultation_notes"] = *notes
	}
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
