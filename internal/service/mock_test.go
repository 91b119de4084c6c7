package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type mockAppointmentRepository struct {
	mu           sync.Mutex
	appointments []entity.Appointment
	err          error
}

func (m *mockAppointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments = append(m.appointments, *appointment)
	return m.err
}

func (m *mockAppointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.appointments {
		if m.appointments[i].ID == id {
			a := m.appointments[i]
			return &a, m.err
		}
	}
	return nil, m.err
}

func (m *mockAppointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	return nil, errors.New("not used")
}

func (m *mockAppointmentRepository) FindByPhysicianID(db *gorm.DB, physicianID uuid.UUID) ([]entity.Appointment, error) {
	return nil, errors.New("not used")
}

func (m *mockAppointmentRepository) FindActiveOverlapping(db *gorm.DB, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []entity.Appointment
	for _, a := range m.appointments {
		if a.PhysicianID != physicianID || a.ID == excludeID || !a.IsActive() {
			continue
		}
		if a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepository) FindActiveStartingBetween(db *gorm.DB, from, to time.Time) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []entity.Appointment
	for _, a := range m.appointments {
		if a.IsActive() && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepository) UpdateSchedule(db *gorm.DB, appointment *entity.Appointment) (int64, error) {
	return 0, errors.New("not used")
}

func (m *mockAppointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, from []entity.AppointmentStatus, notes *string) (int64, error) {
	return 0, errors.New("not used")
}

// nilTransactor hands out nil connections; the mocks never touch them.
type nilTransactor struct{}

func (nilTransactor) Conn(ctx context.Context) *gorm.DB { return nil }

func (nilTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	failOn map[uuid.UUID]bool
}

func (n *recordingNotifier) SendToUser(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failOn[notification.UserID] {
		return errors.New("push gateway unavailable")
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
