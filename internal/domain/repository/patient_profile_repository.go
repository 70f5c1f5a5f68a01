package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

type PatientProfileRepository interface {
	Create(ctx context.Context, profile *entity.PatientProfile) error
	// UpsertMatricNo sets the matric number, creating the profile row when missing
	UpsertMatricNo(ctx context.Context, userID uuid.UUID, matricNo string) error
}
