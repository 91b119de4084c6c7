package usecase

import (
	"context"

	"medical-scheduling/internal/converter"
	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/repository"
	"medical-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type FeedbackUsecase interface {
	SubmitFeedback(ctx context.Context, appointmentID uuid.UUID, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error)
	GetFeedback(ctx context.Context, appointmentID uuid.UUID) (*dto.FeedbackResponse, error)
}

type feedbackUsecase struct {
	store           repository.Transactor
	log             *logrus.Logger
	feedbackRepo    repository.FeedbackRepository
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	auditService    service.AuditService
}

func NewFeedbackUsecase(
	store repository.Transactor,
	log *logrus.Logger,
	feedbackRepo repository.FeedbackRepository,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) FeedbackUsecase {
	return &feedbackUsecase{
		store:           store,
		log:             log,
		feedbackRepo:    feedbackRepo,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
	}
}

// SubmitFeedback records the calling patient's rating of one of their
// completed appointments. Another patient's appointment reads as not found.
func (u *feedbackUsecase) SubmitFeedback(ctx context.Context, appointmentID uuid.UUID, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if role != entity.RolePatient {
		return nil, ErrRoleNotAllowed
	}
	if req.Rating < entity.MinFeedbackRating || req.Rating > entity.MaxFeedbackRating {
		return nil, ErrInvalidRating
	}

	patient, err := u.patientRepo.FindByUserID(u.store.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", userID, err)
		return nil, classify("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	var feedback *entity.AppointmentFeedback
	err = u.store.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
		if err != nil {
			return err
		}
		if appointment == nil || appointment.PatientID != patient.ID {
			return ErrAppointmentNotFound
		}
		if !appointment.IsCompleted() {
			return ErrFeedbackNotCompleted
		}

		existing, err := u.feedbackRepo.FindByAppointmentID(tx, appointment.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrFeedbackExists
		}

		feedback = &entity.AppointmentFeedback{
			ID:            uuid.New(),
			AppointmentID: appointment.ID,
			PatientID:     patient.ID,
			PhysicianID:   appointment.PhysicianID,
			Rating:        req.Rating,
			Comment:       req.Comment,
		}
		if err := u.feedbackRepo.Create(tx, feedback); err != nil {
			// a concurrent submission won the unique index
			if isUniqueViolation(err) {
				return ErrFeedbackExists
			}
			return err
		}

		if err := u.auditService.LogCreate(tx, &userID, entity.AuditActionAppointmentFeedback, entity.AuditEntityAppointment, appointment.ID.String(), converter.FeedbackToResponse(feedback)); err != nil {
			u.log.Warnf("Failed to record audit log for feedback on appointment %s: %+v", appointment.ID, err)
		}
		return nil
	})
	if err != nil {
		err = classify("submit feedback", err)
		if isTransient(err) {
			u.log.Warnf("Failed to submit feedback for appointment %s: %+v", appointmentID, err)
		}
		return nil, err
	}

	u.log.Infof("Feedback submitted: appointment=%s, rating=%d", appointmentID, feedback.Rating)
	return converter.FeedbackToResponse(feedback), nil
}

// GetFeedback returns an appointment's feedback to its participants or an admin
func (u *feedbackUsecase) GetFeedback(ctx context.Context, appointmentID uuid.UUID) (*dto.FeedbackResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	db := u.store.Conn(ctx)
	appointment, err := u.appointmentRepo.FindByID(db, appointmentID)
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

	feedback, err := u.feedbackRepo.FindByAppointmentID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find feedback for appointment %s: %+v", appointmentID, err)
		return nil, classify("find feedback", err)
	}
	if feedback == nil {
		return nil, ErrFeedbackNotFound
	}

	return converter.FeedbackToResponse(feedback), nil
}
