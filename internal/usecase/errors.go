package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Every error returned by a usecase either wraps one of these
// or is a *TransientError.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrTransient         = errors.New("temporarily unavailable")
)

var (
	ErrPhysicianNotFound    = fmt.Errorf("%w: physician not found", ErrNotFound)
	ErrPatientNotFound      = fmt.Errorf("%w: patient not found", ErrNotFound)
	ErrAppointmentNotFound  = fmt.Errorf("%w: appointment not found", ErrNotFound)
	ErrAuditLogNotFound     = fmt.Errorf("%w: audit log not found", ErrNotFound)
	ErrFeedbackNotFound     = fmt.Errorf("%w: no feedback for this appointment", ErrNotFound)
	ErrPhysicianNotVerified = fmt.Errorf("%w: physician is not accepting bookings", ErrNotFound)
	ErrNotParticipant       = fmt.Errorf("%w: you are not a participant of this appointment", ErrForbidden)
	ErrRoleNotAllowed       = fmt.Errorf("%w: your role cannot perform this action", ErrForbidden)
	ErrNoPrincipal          = fmt.Errorf("%w: no authenticated user", ErrForbidden)
	ErrStartInPast          = fmt.Errorf("%w: start time must be in the future", ErrValidation)
	ErrInvalidDuration      = fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidation)
	ErrInvalidRadius        = fmt.Errorf("%w: radius_km is out of range", ErrValidation)
	ErrInvalidSchedule      = fmt.Errorf("%w: availability schedule is malformed", ErrValidation)
	ErrInvalidTimeZone      = fmt.Errorf("%w: unknown time zone", ErrValidation)
	ErrInvalidRating        = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrSlotTaken            = fmt.Errorf("%w: the requested time is not available", ErrSlotUnavailable)
	ErrBookingInProgress    = fmt.Errorf("%w: a booking with this idempotency key is in progress", ErrSlotUnavailable)
	ErrAppointmentTerminal  = fmt.Errorf("%w: appointment is already completed or cancelled", ErrInvalidTransition)
	ErrAppointmentCompleted = fmt.Errorf("%w: appointment is already completed", ErrInvalidTransition)
	ErrFeedbackNotCompleted = fmt.Errorf("%w: feedback can only be left for a completed appointment", ErrInvalidTransition)
	ErrFeedbackExists       = fmt.Errorf("%w: feedback was already submitted for this appointment", ErrConflict)
)

// TransientError reports an infrastructure failure the caller may retry
// with backoff.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// PostgreSQL SQLSTATE codes
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// classify converts a store error into one of the error kinds above.
// Overlap and uniqueness violations become ErrSlotTaken. Anything else
// except context cancellation is transient.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isKnown(err) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation, pgUniqueViolation:
			return ErrSlotTaken
		}
	}

	return &TransientError{Op: op, Err: err}
}

func isKnown(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrSlotUnavailable, ErrInvalidTransition, ErrConflict, ErrTransient} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
