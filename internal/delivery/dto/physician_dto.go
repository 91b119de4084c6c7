package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// UpdatePhysicianProfileRequest lists every field a physician may change.
// Nil fields are left untouched.
type UpdatePhysicianProfileRequest struct {
	Specialty            *string             `json:"specialty" validate:"omitempty,min=2,max=100"`
	Address              *string             `json:"address" validate:"omitempty,max=500"`
	Latitude             *float64            `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude            *float64            `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	TimeZone             *string             `json:"time_zone" validate:"omitempty,timezone"`
	AvailabilitySchedule map[string][]string `json:"availability_schedule" validate:"omitempty,dive,keys,weekday,endkeys,dive,hhmm_range"`
}

type VerifyPhysicianRequest struct {
	IsVerified *bool `json:"is_verified" validate:"required"`
}

type GeoSearchRequest struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	RadiusKm  float64 `validate:"omitempty,gt=0"`
	Specialty string  `validate:"omitempty,max=100"`
}

// Response DTOs

type PhysicianResponse struct {
	ID                   uuid.UUID           `json:"id"`
	UserID               uuid.UUID           `json:"user_id"`
	FirstName            string              `json:"first_name"`
	LastName             string              `json:"last_name"`
	Specialty            string              `json:"specialty"`
	Address              *string             `json:"address,omitempty"`
	Latitude             *float64            `json:"latitude,omitempty"`
	Longitude            *float64            `json:"longitude,omitempty"`
	TimeZone             string              `json:"time_zone"`
	IsVerified           bool                `json:"is_verified"`
	AvailabilitySchedule map[string][]string `json:"availability_schedule,omitempty"`
}

type PhysicianDistanceResponse struct {
	PhysicianResponse
	DistanceKm float64 `json:"distance_km"`
}

type PhysicianListResponse struct {
	Physicians []PhysicianResponse `json:"physicians"`
	Total      int                 `json:"total"`
}

type PhysicianDistanceListResponse struct {
	Physicians []PhysicianDistanceResponse `json:"physicians"`
	Total      int                         `json:"total"`
}

type FreeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailabilityResponse struct {
	PhysicianID uuid.UUID      `json:"physician_id"`
	Date        string         `json:"date"`
	TimeZone    string         `json:"time_zone"`
	Intervals   []FreeInterval `json:"intervals"`
}
