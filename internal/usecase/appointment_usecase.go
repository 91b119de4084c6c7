package usecase

import (
	"context"
	"fmt"
	"time"

	"medical-scheduling/config"
	"medical-scheduling/internal/converter"
	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/repository"
	"medical-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	idempotencyTimeout      = 3 * time.Second
	notificationDateLayout  = "Jan 02, 2006"
	notificationShortLayout = "Jan 02, 15:04"
	patientAppointmentsLink = "/patient/appointments"
	physicianScheduleLink   = "/physician/schedule"
)

type AppointmentUsecase interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) error
	Complete(ctx context.Context, appointmentID uuid.UUID, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	IsSlotFree(ctx context.Context, physicianID uuid.UUID, startTime string, durationMinutes int) (*dto.SlotCheckResponse, error)
}

type appointmentUsecase struct {
	store           repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	physicianRepo   repository.PhysicianRepository
	patientRepo     repository.PatientRepository
	conflictChecker service.ConflictChecker
	linkGenerator   service.TelemedicineLinkGenerator
	auditService    service.AuditService
	notifications   *service.NotificationDispatcher
	idempotency     service.IdempotencyStore
	cfg             config.BookingConfig
	now             func() time.Time
}

func NewAppointmentUsecase(
	store repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	physicianRepo repository.PhysicianRepository,
	patientRepo repository.PatientRepository,
	conflictChecker service.ConflictChecker,
	linkGenerator service.TelemedicineLinkGenerator,
	auditService service.AuditService,
	notifications *service.NotificationDispatcher,
	idempotency service.IdempotencyStore,
	cfg config.BookingConfig,
) AppointmentUsecase {
	return &appointmentUsecase{
		store:           store,
		log:             log,
		appointmentRepo: appointmentRepo,
		physicianRepo:   physicianRepo,
		patientRepo:     patientRepo,
		conflictChecker: conflictChecker,
		linkGenerator:   linkGenerator,
		auditService:    auditService,
		notifications:   notifications,
		idempotency:     idempotency,
		cfg:             cfg,
		now:             time.Now,
	}
}

// Book creates a scheduled appointment for the calling patient.
//
// Flow:
// 1. Validate duration and start time
// 2. Claim the idempotency key when one is supplied
// 3. Lock the physician row, run the conflict check, insert
// 4. Record the idempotency result
//
// The physician row lock serializes concurrent bookings of one physician.
// The appointments_no_overlap constraint rejects anything that slips past
// it; the violation surfaces as ErrSlotTaken.
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if role != entity.RolePatient {
		return nil, ErrRoleNotAllowed
	}

	duration, err := u.bookingDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	start, err := u.futureInstant(req.StartTime)
	if err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByUserID(u.store.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", userID, err)
		return nil, classify("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if req.IdempotencyKey != "" && u.idempotency != nil {
		existing, reserved, err := u.reserveIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !reserved {
			if existing == uuid.Nil {
				return nil, ErrBookingInProgress
			}
			u.log.Infof("Replaying booking for idempotency key %q: appointment=%s", req.IdempotencyKey, existing)
			return u.loadForPatient(ctx, existing, patient.ID)
		}
	}

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       patient.ID,
		PhysicianID:     req.PhysicianID,
		DurationMinutes: duration,
		Status:          entity.AppointmentStatusScheduled,
	}
	appointment.SetTime(start)

	appointment.TelemedicineLink, err = u.linkGenerator.Generate(appointment.ID)
	if err != nil {
		u.log.Errorf("Failed to generate telemedicine link: %+v", err)
		u.releaseIdempotencyKey(userID, req.IdempotencyKey)
		return nil, &TransientError{Op: "generate telemedicine link", Err: err}
	}

	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		physician, err := u.physicianRepo.LockByID(tx, req.PhysicianID)
		if err != nil {
			return err
		}
		if physician == nil || !physician.IsVerified {
			return ErrPhysicianNotFound
		}

		available, err := u.conflictChecker.IsAvailable(tx, physician, start, duration, uuid.Nil)
		if err != nil {
			return err
		}
		if !available {
			return ErrSlotTaken
		}

		if err := u.appointmentRepo.Create(tx, appointment); err != nil {
			return err
		}

		if err := u.auditService.LogCreate(tx, &userID, entity.AuditActionAppointmentBook, entity.AuditEntityAppointment, appointment.ID.String(), auditSnapshot(appointment)); err != nil {
			u.log.Warnf("Failed to record audit log for booked appointment %s: %+v", appointment.ID, err)
		}
		return nil
	})
	if err != nil {
		u.releaseIdempotencyKey(userID, req.IdempotencyKey)
		err = classify("book appointment", err)
		if isTransient(err) {
			u.log.Warnf("Failed to book appointment with physician %s: %+v", req.PhysicianID, err)
		}
		return nil, err
	}

	if req.IdempotencyKey != "" && u.idempotency != nil {
		idemCtx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
		if err := u.idempotency.Complete(idemCtx, userID, req.IdempotencyKey, appointment.ID); err != nil {
			u.log.Warnf("Failed to record idempotency key %q (non-fatal): %+v", req.IdempotencyKey, err)
		}
		cancel()
	}

	u.log.Infof("Appointment booked: id=%s, physician=%s, start=%s", appointment.ID, appointment.PhysicianID, appointment.StartTime.Format(time.RFC3339))
	return u.reload(ctx, appointment), nil
}

// Reschedule moves an active appointment to a new start, keeping its
// duration. Either participant may reschedule.
func (u *appointmentUsecase) Reschedule(ctx context.Context, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, _, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	start, err := u.futureInstant(req.NewStartTime)
	if err != nil {
		return nil, err
	}

	var (
		appointment *entity.Appointment
		oldStart    time.Time
	)
	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err = u.findForParticipant(tx, appointmentID, userID)
		if err != nil {
			return err
		}
		if appointment.IsTerminal() {
			return ErrAppointmentTerminal
		}

		physician, err := u.physicianRepo.LockByID(tx, appointment.PhysicianID)
		if err != nil {
			return err
		}
		if physician == nil {
			return ErrPhysicianNotFound
		}

		available, err := u.conflictChecker.IsAvailable(tx, physician, start, appointment.DurationMinutes, appointment.ID)
		if err != nil {
			return err
		}
		if !available {
			return ErrSlotTaken
		}

		before := auditSnapshot(appointment)
		oldStart = appointment.Reschedule(start)

		affected, err := u.appointmentRepo.UpdateSchedule(tx, appointment)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAppointmentTerminal
		}

		if err := u.auditService.LogUpdate(tx, &userID, entity.AuditActionAppointmentReschedule, entity.AuditEntityAppointment, appointment.ID.String(), before, auditSnapshot(appointment)); err != nil {
			u.log.Warnf("Failed to record audit log for rescheduled appointment %s: %+v", appointment.ID, err)
		}
		return nil
	})
	if err != nil {
		err = classify("reschedule appointment", err)
		if isTransient(err) {
			u.log.Warnf("Failed to reschedule appointment %s: %+v", appointmentID, err)
		}
		return nil, err
	}

	u.notifications.Dispatch(rescheduleNotification(appointment, userID, oldStart))

	u.log.Infof("Appointment rescheduled: id=%s, from=%s, to=%s", appointment.ID, oldStart.Format(time.RFC3339), appointment.StartTime.Format(time.RFC3339))
	return u.reload(ctx, appointment), nil
}

// Cancel is idempotent: cancelling a cancelled appointment succeeds
// without side effects. Completed appointments cannot be cancelled.
func (u *appointmentUsecase) Cancel(ctx context.Context, appointmentID uuid.UUID) error {
	userID, _, err := principalFrom(ctx)
	if err != nil {
		return err
	}

	var (
		appointment *entity.Appointment
		changed     bool
	)
	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err = u.findForParticipant(tx, appointmentID, userID)
		if err != nil {
			return err
		}
		if appointment.IsCancelled() {
			return nil
		}
		if appointment.IsCompleted() {
			return ErrAppointmentCompleted
		}

		affected, err := u.appointmentRepo.UpdateStatus(tx, appointment.ID, entity.AppointmentStatusCancelled, entity.ActiveAppointmentStatuses, nil)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Transitioned concurrently, report what it became.
			current, err := u.appointmentRepo.FindByID(tx, appointment.ID)
			if err != nil {
				return err
			}
			if current != nil && current.IsCancelled() {
				return nil
			}
			return ErrAppointmentCompleted
		}

		before := auditSnapshot(appointment)
		appointment.Cancel()
		changed = true

		if err := u.auditService.LogUpdate(tx, &userID, entity.AuditActionAppointmentCancel, entity.AuditEntityAppointment, appointment.ID.String(), before, auditSnapshot(appointment)); err != nil {
			u.log.Warnf("Failed to record audit log for cancelled appointment %s: %+v", appointment.ID, err)
		}
		return nil
	})
	if err != nil {
		err = classify("cancel appointment", err)
		if isTransient(err) {
			u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		}
		return err
	}

	if changed {
		u.notifications.Dispatch(cancelNotification(appointment, userID))
		u.log.Infof("Appointment cancelled: id=%s, by=%s", appointment.ID, userID)
	}
	return nil
}

// Complete closes an active appointment. Only its physician may do so.
func (u *appointmentUsecase) Complete(ctx context.Context, appointmentID uuid.UUID, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if role != entity.RolePhysician {
		return nil, ErrRoleNotAllowed
	}

	var appointment *entity.Appointment
	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err = u.findForParticipant(tx, appointmentID, userID)
		if err != nil {
			return err
		}
		if appointment.Physician.UserID != userID {
			return ErrNotParticipant
		}
		if appointment.IsTerminal() {
			return ErrAppointmentTerminal
		}

		affected, err := u.appointmentRepo.UpdateStatus(tx, appointment.ID, entity.AppointmentStatusCompleted, entity.ActiveAppointmentStatuses, req.ConsultationNotes)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAppointmentTerminal
		}

		before := auditSnapshot(appointment)
		appointment.Complete(req.ConsultationNotes)

		if err := u.auditService.LogUpdate(tx, &userID, entity.AuditActionAppointmentComplete, entity.AuditEntityAppointment, appointment.ID.String(), before, auditSnapshot(appointment)); err != nil {
			u.log.Warnf("Failed to record audit log for completed appointment %s: %+v", appointment.ID, err)
		}
		return nil
	})
	if err != nil {
		err = classify("complete appointment", err)
		if isTransient(err) {
			u.log.Warnf("Failed to complete appointment %s: %+v", appointmentID, err)
		}
		return nil, err
	}

	u.log.Infof("Appointment completed: id=%s", appointment.ID)
	return converter.AppointmentToResponse(appointment), nil
}

// GetAppointment returns an appointment to one of its participants or an admin
func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(u.store.Conn(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, classify("find appointment", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if role != entity.RoleAdmin && !appointment.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	return converter.AppointmentToResponse(appointment), nil
}

// GetMyAppointments lists the caller's appointments, most recent first
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	db := u.store.Conn(ctx)
	var appointments []entity.Appointment

	switch role {
	case entity.RolePatient:
		patient, err := u.patientRepo.FindByUserID(db, userID)
		if err != nil {
			u.log.Warnf("Failed to find patient for user %s: %+v", userID, err)
			return nil, classify("find patient", err)
		}
		if patient == nil {
			return nil, ErrPatientNotFound
		}
		appointments, err = u.appointmentRepo.FindByPatientID(db, patient.ID)
		if err != nil {
			u.log.Warnf("Failed to find appointments for patient %s: %+v", patient.ID, err)
			return nil, classify("find appointments", err)
		}
	case entity.RolePhysician:
		physician, err := u.physicianRepo.FindByUserID(db, userID)
		if err != nil {
			u.log.Warnf("Failed to find physician for user %s: %+v", userID, err)
			return nil, classify("find physician", err)
		}
		if physician == nil {
			return nil, ErrPhysicianNotFound
		}
		appointments, err = u.appointmentRepo.FindByPhysicianID(db, physician.ID)
		if err != nil {
			u.log.Warnf("Failed to find appointments for physician %s: %+v", physician.ID, err)
			return nil, classify("find appointments", err)
		}
	default:
		return nil, ErrRoleNotAllowed
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// IsSlotFree runs the booking conflict check without writing anything
func (u *appointmentUsecase) IsSlotFree(ctx context.Context, physicianID uuid.UUID, startTime string, durationMinutes int) (*dto.SlotCheckResponse, error) {
	duration, err := u.bookingDuration(&durationMinutes)
	if err != nil {
		return nil, err
	}
	start, err := u.futureInstant(startTime)
	if err != nil {
		return nil, err
	}

	db := u.store.Conn(ctx)
	physician, err := u.physicianRepo.FindByID(db, physicianID)
	if err != nil {
		u.log.Warnf("Failed to find physician %s: %+v", physicianID, err)
		return nil, classify("find physician", err)
	}
	if physician == nil || !physician.IsVerified {
		return nil, ErrPhysicianNotFound
	}

	available, err := u.conflictChecker.IsAvailable(db, physician, start, duration, uuid.Nil)
	if err != nil {
		return nil, classify("check slot", err)
	}

	return &dto.SlotCheckResponse{
		PhysicianID:     physicianID,
		StartTime:       start,
		DurationMinutes: duration,
		Available:       available,
	}, nil
}

// bookingDuration applies the default only when no duration was sent
func (u *appointmentUsecase) bookingDuration(minutes *int) (int, error) {
	if minutes == nil {
		if u.cfg.DefaultDurationMinutes > 0 {
			return u.cfg.DefaultDurationMinutes, nil
		}
		return entity.DefaultDurationMinutes, nil
	}
	if *minutes <= 0 {
		return 0, ErrInvalidDuration
	}
	return *minutes, nil
}

func (u *appointmentUsecase) futureInstant(value string) (time.Time, error) {
	start, err := ParseInstant(value)
	if err != nil {
		return time.Time{}, err
	}
	if !start.After(u.now()) {
		return time.Time{}, ErrStartInPast
	}
	return start, nil
}

// findForParticipant loads an appointment with its participants and
// checks the user takes part in it.
func (u *appointmentUsecase) findForParticipant(db *gorm.DB, appointmentID, userID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return appointment, nil
}

func (u *appointmentUsecase) loadForPatient(ctx context.Context, appointmentID, patientID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.store.Conn(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, classify("find appointment", err)
	}
	if appointment == nil || appointment.PatientID != patientID {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

// reload fetches the appointment with relations for the response, falling
// back to the in-memory value.
func (u *appointmentUsecase) reload(ctx context.Context, appointment *entity.Appointment) *dto.AppointmentResponse {
	full, err := u.appointmentRepo.FindByID(u.store.Conn(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment)
	}
	return converter.AppointmentToResponse(full)
}

func (u *appointmentUsecase) reserveIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	idemCtx, cancel := context.WithTimeout(ctx, idempotencyTimeout)
	defer cancel()

	existing, reserved, err := u.idempotency.Reserve(idemCtx, userID, key)
	if err != nil {
		u.log.Warnf("Failed to reserve idempotency key %q: %+v", key, err)
		return uuid.Nil, false, &TransientError{Op: "reserve idempotency key", Err: err}
	}
	return existing, reserved, nil
}

func (u *appointmentUsecase) releaseIdempotencyKey(userID uuid.UUID, key string) {
	if key == "" || u.idempotency == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
	defer cancel()
	if err := u.idempotency.Release(ctx, userID, key); err != nil {
		u.log.Warnf("Failed to release idempotency key %q (non-fatal): %+v", key, err)
	}
}

func auditSnapshot(a *entity.Appointment) entity.JSON {
	return entity.JSON{
		"start_time":       a.StartTime.UTC().Format(time.RFC3339),
		"duration_minutes": a.DurationMinutes,
		"status":           a.Status,
	}
}

// rescheduleNotification tells the other participant about the move
func rescheduleNotification(a *entity.Appointment, requesterID uuid.UUID, oldStart time.Time) service.Notification {
	from := oldStart.UTC().Format(notificationShortLayout)
	to := a.StartTime.UTC().Format(notificationShortLayout)

	if requesterID == a.Patient.UserID {
		return service.Notification{
			UserID: a.Physician.UserID,
			Title:  "Appointment Rescheduled",
			Body:   fmt.Sprintf("Your appointment with %s originally at %s has been rescheduled to %s.", a.Patient.FullName(), from, to),
			Data:   map[string]string{"link": physicianScheduleLink},
		}
	}
	return service.Notification{
		UserID: a.Patient.UserID,
		Title:  "Appointment Rescheduled",
		Body:   fmt.Sprintf("Your appointment with %s originally at %s has been rescheduled to %s.", a.Physician.DisplayName(), from, to),
		Data:   map[string]string{"link": patientAppointmentsLink},
	}
}

// cancelNotification tells the other participant who cancelled
func cancelNotification(a *entity.Appointment, requesterID uuid.UUID) service.Notification {
	day := a.StartTime.UTC().Format(notificationDateLayout)

	if requesterID == a.Patient.UserID {
		return service.Notification{
			UserID: a.Physician.UserID,
			Title:  "Appointment Cancelled",
			Body:   fmt.Sprintf("Your appointment on %s has been cancelled by %s.", day, a.Patient.FullName()),
			Data:   map[string]string{"link": physicianScheduleLink},
		}
	}
	return service.Notification{
		UserID: a.Patient.UserID,
		Title:  "Appointment Cancelled",
		Body:   fmt.Sprintf("Your appointment on %s has been cancelled by %s.", day, a.Physician.DisplayName()),
		Data:   map[string]string{"link": patientAppointmentsLink},
	}
}
