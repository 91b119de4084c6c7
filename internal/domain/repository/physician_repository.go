package repository

import (
	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PhysicianRepository interface {
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Physician, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Physician, error)
	// LockByID loads the physician with a row lock held until the
	// surrounding transaction ends.
	LockByID(db *gorm.DB, id uuid.UUID) (*entity.Physician, error)
	FindVerified(db *gorm.DB, filter *entity.PhysicianFilter) ([]entity.Physician, error)
	// Update writes the self-service profile fields
	Update(db *gorm.DB, physician *entity.Physician) error
	SetVerified(db *gorm.DB, id uuid.UUID, verified bool) error
}
