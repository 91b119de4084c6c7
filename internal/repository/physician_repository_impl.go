package repository

import (
	"errors"

	"medical-scheduling/internal/domain/entity"
	domainRepo "medical-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type physicianRepository struct{}

func NewPhysicianRepository() domainRepo.PhysicianRepository {
	return &physicianRepository{}
}

func (r *physicianRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Physician, error) {
	return r.first(db.Where("id = ?", id))
}

func (r *physicianRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Physician, error) {
	return r.first(db.Where("user_id = ?", userID))
}

// LockByID serializes bookings per physician: concurrent transactions wait
// here until the holder commits or rolls back.
func (r *physicianRepository) LockByID(db *gorm.DB, id uuid.UUID) (*entity.Physician, error) {
	return r.first(db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *physicianRepository) first(query *gorm.DB) (*entity.Physician, error) {
	var physician entity.Physician
	err := query.First(&physician).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &physician, nil
}

// FindVerified returns physicians that passed verification.
// Supports optional filters: specialty and presence of coordinates.
func (r *physicianRepository) FindVerified(db *gorm.DB, filter *entity.PhysicianFilter) ([]entity.Physician, error) {
	var physicians []entity.Physician
	query := db.Where("is_verified = ?", true)

	if filter != nil {
		if filter.Specialty != "" {
			query = query.Where("specialty ILIKE ?", "%"+filter.Specialty+"%")
		}
		if filter.WithCoordinates {
			query = query.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
		}
	}

	err := query.Order("last_name ASC, first_name ASC").Find(&physicians).Error
	if err != nil {
		return nil, err
	}
	return physicians, nil
}

func (r *physicianRepository) Update(db *gorm.DB, physician *entity.Physician) error {
	return db.Model(&entity.Physician{}).
		Where("id = ?", physician.ID).
		Updates(map[string]interface{}{
			"specialty":             physician.Specialty,
			"address":               physician.Address,
			"latitude":              physician.Latitude,
			"longitude":             physician.Longitude,
			"time_zone":             physician.TimeZone,
			"availability_schedule": physician.AvailabilitySchedule,
		}).Error
}

func (r *physicianRepository) SetVerified(db *gorm.DB, id uuid.UUID, verified bool) error {
	return db.Model(&entity.Physician{}).
		Where("id = ?", id).
		Update("is_verified", verified).Error
}
