package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	FindByID(ctx context.Context, id int) (*entity.Role, error)
	FindByName(ctx context.Context, name string) (*entity.Role, error)
	FindAll(ctx context.Context) ([]entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	Delete(ctx context.Context, id int) error

	// SyncPermissions replaces the permission set of a role
	SyncPermissions(ctx context.Context, roleID int, permissionNames []string) error
	AssignToUser(ctx context.Context, userID uuid.UUID, roleID int) error
	// ReplaceUserRoles leaves the user with exactly one role
	ReplaceUserRoles(ctx context.Context, userID uuid.UUID, roleID int) error
	FindAllPermissions(ctx context.Context) ([]entity.Permission, error)

	FindRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error)
	FindPermissionNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error)
}
