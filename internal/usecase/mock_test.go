package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore serializes transactions with a mutex, standing in for the
// physician row lock. Connections are nil; the in-memory repositories
// ignore them.
type memStore struct {
	mu sync.Mutex
}

func (s *memStore) Conn(ctx context.Context) *gorm.DB { return nil }

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

type memPhysicianRepository struct {
	mu         sync.Mutex
	physicians map[uuid.UUID]*entity.Physician
	lockErr    error
	updates    int
}

func newMemPhysicianRepository() *memPhysicianRepository {
	return &memPhysicianRepository{physicians: map[uuid.UUID]*entity.Physician{}}
}

func (r *memPhysicianRepository) add(p *entity.Physician) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.physicians[p.ID] = p
}

func (r *memPhysicianRepository) get(id uuid.UUID) (entity.Physician, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.physicians[id]
	if !ok {
		return entity.Physician{}, false
	}
	return *p, true
}

func (r *memPhysicianRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Physician, error) {
	p, ok := r.get(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memPhysicianRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Physician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.physicians {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memPhysicianRepository) LockByID(db *gorm.DB, id uuid.UUID) (*entity.Physician, error) {
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	return r.FindByID(db, id)
}

func (r *memPhysicianRepository) FindVerified(db *gorm.DB, filter *entity.PhysicianFilter) ([]entity.Physician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Physician
	for _, p := range r.physicians {
		if !p.IsVerified {
			continue
		}
		if filter != nil {
			if filter.Specialty != "" && !strings.Contains(strings.ToLower(p.Specialty), strings.ToLower(filter.Specialty)) {
				continue
			}
			if _, _, ok := p.Coordinates(); filter.WithCoordinates && !ok {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (r *memPhysicianRepository) Update(db *gorm.DB, physician *entity.Physician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *physician
	r.physicians[physician.ID] = &c
	r.updates++
	return nil
}

func (r *memPhysicianRepository) SetVerified(db *gorm.DB, id uuid.UUID, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.physicians[id]; ok {
		c := *p
		c.IsVerified = verified
		r.physicians[id] = &c
		r.updates++
	}
	return nil
}

type memPatientRepository struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*entity.Patient
}

func newMemPatientRepository() *memPatientRepository {
	return &memPatientRepository{patients: map[uuid.UUID]*entity.Patient{}}
}

func (r *memPatientRepository) add(p *entity.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
}

func (r *memPatientRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *memPatientRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

// memAppointmentRepository keeps appointments in memory and attaches the
// participants on reads, like the gorm preloads do.
type memAppointmentRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]entity.Appointment
	physicians   *memPhysicianRepository
	patients     *memPatientRepository
	createErr    error
}

func newMemAppointmentRepository(physicians *memPhysicianRepository, patients *memPatientRepository) *memAppointmentRepository {
	return &memAppointmentRepository{
		appointments: map[uuid.UUID]entity.Appointment{},
		physicians:   physicians,
		patients:     patients,
	}
}

func (r *memAppointmentRepository) withRelations(a entity.Appointment) entity.Appointment {
	if p, ok := r.physicians.get(a.PhysicianID); ok {
		a.Physician = p
	}
	if p, _ := r.patients.FindByID(nil, a.PatientID); p != nil {
		a.Patient = *p
	}
	return a
}

func (r *memAppointmentRepository) stored(id uuid.UUID) (entity.Appointment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	return a, ok
}

func (r *memAppointmentRepository) all() []entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, a)
	}
	return out
}

func (r *memAppointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	a := *appointment
	a.Patient = entity.Patient{}
	a.Physician = entity.Physician{}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.appointments[a.ID] = a
	return nil
}

func (r *memAppointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	a, ok := r.stored(id)
	if !ok {
		return nil, nil
	}
	a = r.withRelations(a)
	return &a, nil
}

func (r *memAppointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	return r.filter(func(a entity.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *memAppointmentRepository) FindByPhysicianID(db *gorm.DB, physicianID uuid.UUID) ([]entity.Appointment, error) {
	return r.filter(func(a entity.Appointment) bool { return a.PhysicianID == physicianID }), nil
}

func (r *memAppointmentRepository) filter(keep func(entity.Appointment) bool) []entity.Appointment {
	var out []entity.Appointment
	for _, a := range r.all() {
		if keep(a) {
			out = append(out, r.withRelations(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

func (r *memAppointmentRepository) FindActiveOverlapping(db *gorm.DB, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	return r.filter(func(a entity.Appointment) bool {
		return a.PhysicianID == physicianID && a.ID != excludeID && a.IsActive() && a.Overlaps(start, end)
	}), nil
}

func (r *memAppointmentRepository) FindActiveStartingBetween(db *gorm.DB, from, to time.Time) ([]entity.Appointment, error) {
	return r.filter(func(a entity.Appointment) bool {
		return a.IsActive() && !a.StartTime.Before(from) && a.StartTime.Before(to)
	}), nil
}

func (r *memAppointmentRepository) UpdateSchedule(db *gorm.DB, appointment *entity.Appointment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[appointment.ID]
	if !ok || !a.IsActive() {
		return 0, nil
	}
	a.StartTime = appointment.StartTime
	a.EndTime = appointment.EndTime
	a.Status = appointment.Status
	r.appointments[a.ID] = a
	return 1, nil
}

func (r *memAppointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, from []entity.AppointmentStatus, notes *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return 0, nil
	}
	allowed := false
	for _, s := range from {
		if a.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return 0, nil
	}
	a.Status = status
	if notes != nil {
		a.ConsultationNotes = notes
	}
	r.appointments[id] = a
	return 1, nil
}

type stubAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *stubAuditService) LogCreate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *stubAuditService) LogUpdate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.LogCreate(tx, userID, action, entityName, entityID, newValue)
}

type memIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]uuid.UUID
	err    error
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{values: map[string]uuid.UUID{}}
}

func (s *memIdempotencyStore) Reserve(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return uuid.Nil, false, s.err
	}
	k := userID.String() + ":" + key
	if existing, ok := s.values[k]; ok {
		return existing, false, nil
	}
	s.values[k] = uuid.Nil
	return uuid.Nil, true, nil
}

func (s *memIdempotencyStore) Complete(ctx context.Context, userID uuid.UUID, key string, appointmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[userID.String()+":"+key] = appointmentID
	return nil
}

func (s *memIdempotencyStore) Release(ctx context.Context, userID uuid.UUID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, userID.String()+":"+key)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
}

func (n *recordingNotifier) SendToUser(ctx context.Context, notification service.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) notifications() []service.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]service.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

type memRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func (s *memRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, s.err
}

func (s *memRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.revoked == nil {
		s.revoked = map[string]time.Duration{}
	}
	s.revoked[tokenID] = ttl
	return nil
}

var errStoreDown = errors.New("dial tcp: connection refused")

type memFeedbackRepository struct {
	mu        sync.Mutex
	feedback  map[uuid.UUID]entity.AppointmentFeedback
	createErr error
}

func newMemFeedbackRepository() *memFeedbackRepository {
	return &memFeedbackRepository{feedback: map[uuid.UUID]entity.AppointmentFeedback{}}
}

func (r *memFeedbackRepository) Create(db *gorm.DB, feedback *entity.AppointmentFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	feedback.CreatedAt = time.Now()
	r.feedback[feedback.AppointmentID] = *feedback
	return nil
}

func (r *memFeedbackRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.AppointmentFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.feedback[appointmentID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *memFeedbackRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feedback)
}
