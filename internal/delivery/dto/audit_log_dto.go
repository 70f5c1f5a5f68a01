package dto

import (
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64        `json:"id"`
	UserID    *uuid.UUID   `json:"user_id,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
	Action    string       `json:"action"`
	Metadata  entity.JSON  `json:"metadata"`
	CreatedAt time.Time    `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
