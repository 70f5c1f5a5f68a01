package repository

import (
	"context"
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

type MedicationRepository interface {
	Create(ctx context.Context, medication *entity.Medication) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Medication, error)
	FindAll(ctx context.Context, filter entity.MedicationFilter) ([]entity.Medication, int64, error)
	FindLatest(ctx context.Context, limit int) ([]entity.Medication, error)
	Update(ctx context.Context, medication *entity.Medication) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountLowStock(ctx context.Context, threshold int) (int64, error)
	CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error)
	SumStock(ctx context.Context) (int64, error)
}
