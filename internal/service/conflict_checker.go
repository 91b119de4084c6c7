package service

import (
	"errors"
	"time"

	"medical-scheduling/internal/domain/availability"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ConflictChecker decides whether a physician can take a slot.
//
// A physician without a schedule, with a malformed schedule or with an
// unknown time zone has no availability. Only store failures are returned
// as errors.
type ConflictChecker interface {
	IsAvailable(db *gorm.DB, physician *entity.Physician, start time.Time, durationMinutes int, excludeID uuid.UUID) (bool, error)
	ScheduleFor(physician *entity.Physician) (availability.Schedule, *time.Location, bool)
}

type conflictChecker struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
}

func NewConflictChecker(log *logrus.Logger, appointmentRepo repository.AppointmentRepository) ConflictChecker {
	return &conflictChecker{
		log:             log,
		appointmentRepo: appointmentRepo,
	}
}

// IsAvailable checks the slot [start, start+durationMinutes) against the
// physician's weekly hours, then against active appointments. excludeID
// skips one appointment, used when rescheduling it.
func (c *conflictChecker) IsAvailable(db *gorm.DB, physician *entity.Physician, start time.Time, durationMinutes int, excludeID uuid.UUID) (bool, error) {
	if physician == nil || durationMinutes <= 0 {
		return false, nil
	}

	schedule, loc, ok := c.ScheduleFor(physician)
	if !ok {
		return false, nil
	}

	if !schedule.IsWithinAvailability(start, loc, durationMinutes) {
		return false, nil
	}

	start = start.UTC()
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	overlapping, err := c.appointmentRepo.FindActiveOverlapping(db, physician.ID, start, end, excludeID)
	if err != nil {
		c.log.Warnf("Failed to find overlapping appointments for physician %s: %+v", physician.ID, err)
		return false, err
	}

	return len(overlapping) == 0, nil
}

// ScheduleFor parses the physician's stored schedule and time zone. ok is
// false when the physician must be treated as unavailable.
func (c *conflictChecker) ScheduleFor(physician *entity.Physician) (availability.Schedule, *time.Location, bool) {
	schedule, err := availability.ParseJSON(physician.AvailabilitySchedule)
	if err != nil {
		if errors.Is(err, availability.ErrNoSchedule) {
			c.log.Debugf("Physician %s has no availability schedule", physician.ID)
		} else {
			c.log.WithField("physician_id", physician.ID).Warnf("Failed to parse availability schedule: %+v", err)
		}
		return nil, nil, false
	}

	loc, err := physician.Location()
	if err != nil {
		c.log.WithField("physician_id", physician.ID).Warnf("Failed to load time zone %q: %+v", physician.TimeZone, err)
		return nil, nil, false
	}

	return schedule, loc, true
}
