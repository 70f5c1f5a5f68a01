package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

type SpecializationRepository interface {
	Create(ctx context.Context, specialization *entity.Specialization) error
	FindByID(ctx context.Context, id int) (*entity.Specialization, error)
	FindByName(ctx context.Context, name string) (*entity.Specialization, error)
	FindAll(ctx context.Context) ([]entity.Specialization, error)
	Update(ctx context.Context, specialization *entity.Specialization) error
	Delete(ctx context.Context, id int) error

	IsAssignedToStaff(ctx context.Context, userID uuid.UUID, specializationID int) (bool, error)
	SyncStaffSpecializations(ctx context.Context, userID uuid.UUID, specializationIDs []int) error
}
