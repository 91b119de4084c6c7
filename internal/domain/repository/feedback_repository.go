package repository

import (
	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(db *gorm.DB, feedback *entity.AppointmentFeedback) error
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.AppointmentFeedback, error)
}
