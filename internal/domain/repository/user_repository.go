package repository

import (
	"context"
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// FindByIDWithRole returns nil when the user does not exist or lacks the role
	FindByIDWithRole(ctx context.Context, id uuid.UUID, role string) (*entity.User, error)
	FindByRole(ctx context.Context, role string, specialization string) ([]entity.User, error)
	// LockByID takes a row lock on the user until the surrounding transaction ends.
	// It reports false when the user does not exist.
	LockByID(ctx context.Context, id uuid.UUID) (bool, error)
	// FindPatients lists users holding the patient role, newest first
	FindPatients(ctx context.Context, filter entity.PatientFilter) ([]entity.User, int64, error)
	// CountRegistrationsSince groups users of a role by creation day, oldest day first
	CountRegistrationsSince(ctx context.Context, role string, since time.Time) ([]entity.DailyCount, error)
	// Update writes the name and email
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
