package repository

import (
	"errors"

	"medical-scheduling/internal/domain/entity"
	domainRepo "medical-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type feedbackRepository struct{}

func NewFeedbackRepository() domainRepo.FeedbackRepository {
	return &feedbackRepository{}
}

func (r *feedbackRepository) Create(db *gorm.DB, feedback *entity.AppointmentFeedback) error {
	return db.Create(feedback).Error
}

func (r *feedbackRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.AppointmentFeedback, error) {
	var feedback entity.AppointmentFeedback
	err := db.Where("appointment_id = ?", appointmentID).First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}
