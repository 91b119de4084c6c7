package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medical-scheduling/config"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const (
	reminderTitle         = "Appointment Reminder"
	reminderTimeLayout    = "Jan 02 at 03:04 PM UTC"
	patientReminderLink   = "/patient/appointments"
	physicianReminderLink = "/physician/schedule"
)

// ReminderResult summarizes one reminder pass.
type ReminderResult struct {
	From         time.Time
	To           time.Time
	Appointments int
	Sent         int
	Failed       int
}

// ReminderScheduler periodically notifies both participants of active
// appointments starting in [now+Lead, now+Lead+Window). It only reads
// appointments.
//
// Nothing records which appointments were already reminded. A pass that
// runs twice over the same window sends duplicates.
type ReminderScheduler struct {
	store           repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	notifier        NotificationService
	cfg             config.ReminderConfig
	now             func() time.Time

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewReminderScheduler(
	store repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	notifier NotificationService,
	cfg config.ReminderConfig,
) *ReminderScheduler {
	return &ReminderScheduler{
		store:           store,
		log:             log,
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		cfg:             cfg,
		now:             time.Now,
		stopChan:        make(chan struct{}),
	}
}

// Window returns the half-open range scanned by a pass at now.
func (s *ReminderScheduler) Window(now time.Time) (time.Time, time.Time) {
	from := now.UTC().Add(s.cfg.Lead)
	return from, from.Add(s.cfg.Window)
}

// RunOnce performs a single pass. It fails only when the appointments
// cannot be loaded; individual send failures are logged and counted.
func (s *ReminderScheduler) RunOnce(ctx context.Context, now time.Time) (*ReminderResult, error) {
	from, to := s.Window(now)
	result := &ReminderResult{From: from, To: to}

	appointments, err := s.appointmentRepo.FindActiveStartingBetween(s.store.Conn(ctx), from, to)
	if err != nil {
		s.log.Errorf("Failed to load appointments for reminders in [%s, %s): %+v", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
		return nil, fmt.Errorf("load upcoming appointments: %w", err)
	}
	result.Appointments = len(appointments)

	if len(appointments) == 0 {
		s.log.Debug("No upcoming appointments found in the reminder window")
		return result, nil
	}

	for i := range appointments {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		for _, n := range reminderNotifications(&appointments[i]) {
			if err := s.notifier.SendToUser(ctx, n); err != nil {
				result.Failed++
				s.log.WithFields(logrus.Fields{
					"appointment_id": appointments[i].ID,
					"user_id":        n.UserID,
				}).Warnf("Failed to send appointment reminder: %+v", err)
				continue
			}
			result.Sent++
		}
	}

	s.log.Infof("Reminder pass finished: appointments=%d, sent=%d, failed=%d", result.Appointments, result.Sent, result.Failed)
	return result, nil
}

func reminderNotifications(a *entity.Appointment) []Notification {
	when := a.StartTime.UTC().Format(reminderTimeLayout)
	return []Notification{
		{
			UserID: a.Patient.UserID,
			Title:  reminderTitle,
			Body:   fmt.Sprintf("Your appointment with %s is tomorrow, %s.", a.Physician.DisplayName(), when),
			Data:   map[string]string{"link": patientReminderLink},
		},
		{
			UserID: a.Physician.UserID,
			Title:  reminderTitle,
			Body:   fmt.Sprintf("Your appointment with %s is tomorrow, %s.", a.Patient.FullName(), when),
			Data:   map[string]string{"link": physicianReminderLink},
		},
	}
}

// Start runs a pass immediately and then every Interval until ctx is done
// or Stop is called. Calling Start more than once has no effect.
func (s *ReminderScheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		interval := s.cfg.Interval
		if interval <= 0 {
			interval = time.Hour
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()

	s.log.Infof("Reminder scheduler started: interval=%v, lead=%v, window=%v", s.cfg.Interval, s.cfg.Lead, s.cfg.Window)
}

func (s *ReminderScheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx, s.now()); err != nil && ctx.Err() == nil {
		s.log.Warnf("Reminder pass failed: %+v", err)
	}
}

// Stop gracefully shuts down the scheduler.
// Safe to call multiple times.
func (s *ReminderScheduler) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("ReminderScheduler stopped")
	}
}
