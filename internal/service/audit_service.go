package service

import (
	"context"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// AuditService writes audit trail entries. The acting user is taken from ctx, and
// the entry joins any transaction already running in ctx.
type AuditService interface {
	LogCreate(ctx context.Context, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, action string, entityName string, entityID string, oldValue interface{}) error
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

func (s *auditService) LogCreate(ctx context.Context, action string, entityName string, entityID string, newValue interface{}) error {
	return s.record(ctx, action, entityName, entityID, nil, newValue)
}

func (s *auditService) LogUpdate(ctx context.Context, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.record(ctx, action, entityName, entityID, oldValue, newValue)
}

func (s *auditService) LogDelete(ctx context.Context, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.record(ctx, action, entityName, entityID, oldValue, nil)
}

func (s *auditService) record(ctx context.Context, action, entityName, entityID string, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		Action: action,
		Metadata: entity.JSON{
			"entity":    entityName,
			"entity_id": entityID,
			"old_value": oldValue,
			"new_value": newValue,
		},
	}
	if actor, ok := ActorFromContext(ctx); ok {
		userID := actor.UserID
		auditLog.UserID = &userID
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
