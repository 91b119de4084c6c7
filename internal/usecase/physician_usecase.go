package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medical-scheduling/config"
	"medical-scheduling/internal/converter"
	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/domain/availability"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/geo"
	"medical-scheduling/internal/domain/repository"
	"medical-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type PhysicianUsecase interface {
	GetMyProfile(ctx context.Context) (*dto.PhysicianResponse, error)
	UpdateMyProfile(ctx context.Context, req *dto.UpdatePhysicianProfileRequest) (*dto.PhysicianResponse, error)
	GetPhysician(ctx context.Context, physicianID uuid.UUID) (*dto.PhysicianResponse, error)
	SearchPhysicians(ctx context.Context, specialty string) (*dto.PhysicianListResponse, error)
	SearchNearby(ctx context.Context, req *dto.GeoSearchRequest) (*dto.PhysicianDistanceListResponse, error)
	GetAvailability(ctx context.Context, physicianID uuid.UUID, date string) (*dto.AvailabilityResponse, error)
	SetVerification(ctx context.Context, physicianID uuid.UUID, verified bool) (*dto.PhysicianResponse, error)
}

type physicianUsecase struct {
	store           repository.Transactor
	log             *logrus.Logger
	physicianRepo   repository.PhysicianRepository
	appointmentRepo repository.AppointmentRepository
	conflictChecker service.ConflictChecker
	auditService    service.AuditService
	cfg             config.SearchConfig
	now             func() time.Time
}

func NewPhysicianUsecase(
	store repository.Transactor,
	log *logrus.Logger,
	physicianRepo repository.PhysicianRepository,
	appointmentRepo repository.AppointmentRepository,
	conflictChecker service.ConflictChecker,
	auditService service.AuditService,
	cfg config.SearchConfig,
) PhysicianUsecase {
	return &physicianUsecase{
		store:           store,
		log:             log,
		physicianRepo:   physicianRepo,
		appointmentRepo: appointmentRepo,
		conflictChecker: conflictChecker,
		auditService:    auditService,
		cfg:             cfg,
		now:             time.Now,
	}
}

// GetMyProfile returns the calling physician's own profile
func (u *physicianUsecase) GetMyProfile(ctx context.Context) (*dto.PhysicianResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if role != entity.RolePhysician {
		return nil, ErrRoleNotAllowed
	}

	physician, err := u.physicianRepo.FindByUserID(u.store.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find physician for user %s: %+v", userID, err)
		return nil, classify("find physician", err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}

	return converter.PhysicianToResponse(physician), nil
}

// UpdateMyProfile applies the listed fields. Everything is validated
// before the stored profile is touched.
func (u *physicianUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdatePhysicianProfileRequest) (*dto.PhysicianResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if role != entity.RolePhysician {
		return nil, ErrRoleNotAllowed
	}

	var scheduleDoc entity.ScheduleDocument
	if req.AvailabilitySchedule != nil {
		schedule, err := availability.Parse(req.AvailabilitySchedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		raw, err := json.Marshal(schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		scheduleDoc = raw
	}
	if req.TimeZone != nil {
		if _, err := time.LoadLocation(*req.TimeZone); err != nil || *req.TimeZone == "" || *req.TimeZone == "Local" {
			return nil, ErrInvalidTimeZone
		}
	}

	var physician *entity.Physician
	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		physician, err = u.physicianRepo.FindByUserID(tx, userID)
		if err != nil {
			return err
		}
		if physician == nil {
			return ErrPhysicianNotFound
		}

		before := converter.PhysicianToResponse(physician)
		applyProfileUpdate(physician, req, scheduleDoc)

		if err := u.physicianRepo.Update(tx, physician); err != nil {
			return err
		}

		action := entity.AuditActionProfileUpdate
		if req.AvailabilitySchedule != nil {
			action = entity.AuditActionScheduleUpdate
		}
		if err := u.auditService.LogUpdate(tx, &userID, action, entity.AuditEntityPhysician, physician.ID.String(), before, converter.PhysicianToResponse(physician)); err != nil {
			u.log.Warnf("Failed to record audit log for physician %s: %+v", physician.ID, err)
		}
		return nil
	})
	if err != nil {
		err = classify("update physician profile", err)
		if isTransient(err) {
			u.log.Warnf("Failed to update physician profile for user %s: %+v", userID, err)
		}
		return nil, err
	}

	u.log.Infof("Physician profile updated: id=%s", physician.ID)
	return converter.PhysicianToResponse(physician), nil
}

func applyProfileUpdate(p *entity.Physician, req *dto.UpdatePhysicianProfileRequest, schedule entity.ScheduleDocument) {
	if req.Specialty != nil {
		p.Specialty = *req.Specialty
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.TimeZone != nil {
		p.TimeZone = *req.TimeZone
	}
	if schedule != nil {
		p.AvailabilitySchedule = schedule
	}
}

// SetVerification lets an admin accept or withdraw a physician from the
// directory. Unverified physicians cannot be found or booked.
func (u *physicianUsecase) SetVerification(ctx context.Context, physicianID uuid.UUID, verified bool) (*dto.PhysicianResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if role != entity.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	var physician *entity.Physician
	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		physician, err = u.physicianRepo.LockByID(tx, physicianID)
		if err != nil {
			return err
		}
		if physician == nil {
			return ErrPhysicianNotFound
		}
		if physician.IsVerified == verified {
			return nil
		}

		if err := u.physicianRepo.SetVerified(tx, physician.ID, verified); err != nil {
			return err
		}

		before := map[string]interface{}{"is_verified": physician.IsVerified}
		physician.IsVerified = verified
		if err := u.auditService.LogUpdate(tx, &userID, entity.AuditActionPhysicianVerify, entity.AuditEntityPhysician, physician.ID.String(), before, map[string]interface{}{"is_verified": verified}); err != nil {
			u.log.Warnf("Failed to record audit log for verification of physician %s: %+v", physician.ID, err)
		}
		return nil
	})
	if err != nil {
		err = classify("verify physician", err)
		if isTransient(err) {
			u.log.Warnf("Failed to set verification of physician %s: %+v", physicianID, err)
		}
		return nil, err
	}

	u.log.Infof("Physician verification set: id=%s, verified=%t, by=%s", physician.ID, verified, userID)
	return converter.PhysicianToResponse(physician), nil
}

// GetPhysician returns a verified physician's public profile
func (u *physicianUsecase) GetPhysician(ctx context.Context, physicianID uuid.UUID) (*dto.PhysicianResponse, error) {
	physician, err := u.findVerified(ctx, physicianID)
	if err != nil {
		return nil, err
	}
	return converter.PhysicianToResponse(physician), nil
}

// SearchPhysicians lists verified physicians, optionally by specialty
func (u *physicianUsecase) SearchPhysicians(ctx context.Context, specialty string) (*dto.PhysicianListResponse, error) {
	physicians, err := u.physicianRepo.FindVerified(u.store.Conn(ctx), &entity.PhysicianFilter{Specialty: specialty})
	if err != nil {
		u.log.Warnf("Failed to search physicians: %+v", err)
		return nil, classify("search physicians", err)
	}

	return &dto.PhysicianListResponse{
		Physicians: converter.PhysiciansToResponses(physicians),
		Total:      len(physicians),
	}, nil
}

// SearchNearby ranks verified physicians by distance from the given point
func (u *physicianUsecase) SearchNearby(ctx context.Context, req *dto.GeoSearchRequest) (*dto.PhysicianDistanceListResponse, error) {
	radius := req.RadiusKm
	if radius == 0 {
		radius = u.cfg.DefaultRadiusKm
	}
	if radius <= 0 || (u.cfg.MaxRadiusKm > 0 && radius > u.cfg.MaxRadiusKm) {
		return nil, ErrInvalidRadius
	}

	candidates, err := u.physicianRepo.FindVerified(u.store.Conn(ctx), &entity.PhysicianFilter{
		Specialty:       req.Specialty,
		WithCoordinates: true,
	})
	if err != nil {
		u.log.Warnf("Failed to search physicians near %f,%f: %+v", req.Latitude, req.Longitude, err)
		return nil, classify("search physicians", err)
	}

	ranked := geo.Rank(geo.Point{Lat: req.Latitude, Lon: req.Longitude}, candidates, locatePhysician, radius)

	return &dto.PhysicianDistanceListResponse{
		Physicians: converter.RankedPhysiciansToResponses(ranked),
		Total:      len(ranked),
	}, nil
}

func locatePhysician(p entity.Physician) (geo.Point, bool) {
	lat, lon, ok := p.Coordinates()
	return geo.Point{Lat: lat, Lon: lon}, ok
}

// GetAvailability returns the free intervals of a local date in the
// physician's time zone. Past time is never free.
func (u *physicianUsecase) GetAvailability(ctx context.Context, physicianID uuid.UUID, date string) (*dto.AvailabilityResponse, error) {
	physician, err := u.findVerified(ctx, physicianID)
	if err != nil {
		return nil, err
	}

	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", ErrValidation)
	}

	resp := &dto.AvailabilityResponse{
		PhysicianID: physician.ID,
		Date:        date,
		TimeZone:    physician.TimeZone,
		Intervals:   []dto.FreeInterval{},
	}

	schedule, loc, ok := u.conflictChecker.ScheduleFor(physician)
	if !ok {
		return resp, nil
	}

	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", ErrValidation)
	}
	y, m, d := day.Date()
	dayEnd := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	booked, err := u.appointmentRepo.FindActiveOverlapping(u.store.Conn(ctx), physician.ID, day, dayEnd, uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed to find appointments of physician %s on %s: %+v", physician.ID, date, err)
		return nil, classify("find appointments", err)
	}

	busy := make([]availability.Span, len(booked))
	for i, a := range booked {
		busy[i] = availability.Span{Start: a.StartTime, End: a.EndTime}
	}

	now := u.now()
	var free []availability.Span
	for _, span := range schedule.FreeIntervals(y, m, d, loc, busy) {
		if !span.End.After(now) {
			continue
		}
		if span.Start.Before(now) {
			span.Start = now
		}
		free = append(free, span)
	}

	resp.Intervals = converter.SpansToFreeIntervals(free)
	return resp, nil
}

func (u *physicianUsecase) findVerified(ctx context.Context, physicianID uuid.UUID) (*entity.Physician, error) {
	physician, err := u.physicianRepo.FindByID(u.store.Conn(ctx), physicianID)
	if err != nil {
		u.log.Warnf("Failed to find physician %s: %+v", physicianID, err)
		return nil, classify("find physician", err)
	}
	if physician == nil || !physician.IsVerified {
		return nil, ErrPhysicianNotFound
	}
	return physician, nil
}
