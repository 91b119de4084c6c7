package service

import (
	"encoding/json"
	"fmt"

	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const auditSavePoint = "audit_log"

// AuditService writes audit rows inside the caller's transaction. A failed
// write is rolled back to a savepoint so the transaction stays usable.
// Savepoint statements go through Exec; the postgres dialector's
// SavePoint and RollbackTo drop statement errors.
type AuditService interface {
	LogCreate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return s.record(tx, userID, action, entityName, entityID, nil, newValue)
}

func (s *auditService) LogUpdate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.record(tx, userID, action, entityName, entityID, oldValue, newValue)
}

func (s *auditService) record(tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	auditLog, err := newAuditLog(userID, action, entityName, entityID, oldValue, newValue)
	if err != nil {
		s.log.Warnf("Failed to encode audit values for %s %s: %+v", entityName, entityID, err)
		return err
	}

	if err := tx.Exec("SAVEPOINT " + auditSavePoint).Error; err != nil {
		s.log.Warnf("Failed to create audit savepoint: %+v", err)
		return err
	}
	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for %s %s: %+v", entityName, entityID, err)
		if rbErr := tx.Exec("ROLLBACK TO SAVEPOINT " + auditSavePoint).Error; rbErr != nil {
			// The transaction stays aborted and its commit will fail.
			s.log.Errorf("Failed to roll back to audit savepoint: %+v", rbErr)
			return fmt.Errorf("roll back audit savepoint: %w", rbErr)
		}
		return err
	}

	return nil
}

func newAuditLog(userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) (*entity.AuditLog, error) {
	oldJSON, err := toJSON(oldValue)
	if err != nil {
		return nil, err
	}
	newJSON, err := toJSON(newValue)
	if err != nil {
		return nil, err
	}

	return &entity.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityName,
		EntityID:   entityID,
		OldValue:   oldJSON,
		NewValue:   newJSON,
	}, nil
}

// toJSON flattens a snapshot into a JSONB object
func toJSON(v interface{}) (entity.JSON, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case entity.JSON:
		return value, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out entity.JSON
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("audit value must encode as a JSON object: %w", err)
	}
	return out, nil
}
