package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"

	"github.com/sirupsen/logrus"
)

var ErrAuditLogNotFound = errors.New("audit log not found")

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, action string, page, limit int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
	gate         service.AccessGate
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
	gate service.AccessGate,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
		gate:         gate,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, action string, page, limit int) (*dto.AuditLogListResponse, error) {
	if _, err := requireRole(ctx, u.gate, entity.RoleSuperAdmin); err != nil {
		return nil, err
	}

	page, limit = dto.NormalizePage(page, limit)
	logs, total, err := u.auditLogRepo.FindAll(ctx, strings.TrimSpace(action), limit, dto.Offset(page, limit))
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: total,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	if _, err := requireRole(ctx, u.gate, entity.RoleSuperAdmin); err != nil {
		return nil, err
	}

	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
