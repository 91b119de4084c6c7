package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimeZone applies to physicians that never configured one
const DefaultTimeZone = "UTC"

// Physician is the bookable resource. The availability schedule is kept as
// the raw JSON document and only parsed by the availability package.
type Physician struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID               uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	FirstName            string           `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName             string           `gorm:"type:varchar(100);not null" json:"last_name"`
	Specialty            string           `gorm:"type:varchar(100);not null;index" json:"specialty"`
	Address              *string          `gorm:"type:text" json:"address,omitempty"`
	Latitude             *float64         `json:"latitude,omitempty"`
	Longitude            *float64         `json:"longitude,omitempty"`
	IsVerified           bool             `gorm:"not null;default:false;index" json:"is_verified"`
	TimeZone             string           `gorm:"type:varchar(64);not null;default:'UTC'" json:"time_zone"`
	AvailabilitySchedule ScheduleDocument `gorm:"type:jsonb" json:"-"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Physician) TableName() string {
	return "physicians"
}

// Location resolves the physician's time zone, defaulting to UTC when unset
func (p *Physician) Location() (*time.Location, error) {
	if p.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.TimeZone)
}

// Coordinates returns the physician's position when both parts are known
func (p *Physician) Coordinates() (lat, lon float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	return *p.Latitude, *p.Longitude, true
}

// DisplayName is used in notification bodies
func (p *Physician) DisplayName() string {
	return "Dr. " + p.LastName
}
