package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrRoleAlreadyExists = errors.New("role already exists")
	ErrProtectedRole     = errors.New("built-in roles can not be renamed or deleted")
)

type RoleUsecase interface {
	ListRoles(ctx context.Context) ([]dto.RoleResponse, error)
	GetRole(ctx context.Context, id int) (*dto.RoleResponse, error)
	CreateRole(ctx context.Context, req *dto.CreateRoleRequest) (*dto.RoleResponse, error)
	UpdateRole(ctx context.Context, id int, req *dto.UpdateRoleRequest) (*dto.RoleResponse, error)
	DeleteRole(ctx context.Context, id int) error
	ListPermissions(ctx context.Context) ([]dto.PermissionResponse, error)
	SyncPermissions(ctx context.Context, id int, req *dto.SyncPermissionsRequest) (*dto.RoleResponse, error)
	AssignRole(ctx context.Context, userID uuid.UUID, req *dto.AssignRoleRequest) (*dto.UserResponse, error)
}

type roleUsecase struct {
	log          *logrus.Logger
	transactor   repository.Transactor
	roleRepo     repository.RoleRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	aclCache     service.ACLInvalidator
	gate         service.AccessGate
}

func NewRoleUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	aclCache service.ACLInvalidator,
	gate service.AccessGate,
) RoleUsecase {
	return &roleUsecase{
		log:          log,
		transactor:   transactor,
		roleRepo:     roleRepo,
		userRepo:     userRepo,
		auditService: auditService,
		aclCache:     aclCache,
		gate:         gate,
	}
}

func isBuiltInRole(name string) bool {
	_, ok := entity.DefaultRolePermissions[name]
	return ok
}

func (u *roleUsecase) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewRoles); err != nil {
		return nil, err
	}

	roles, err := u.roleRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find roles: %+v", err)
		return nil, err
	}
	return converter.RolesToResponses(roles), nil
}

func (u *roleUsecase) GetRole(ctx context.Context, id int) (*dto.RoleResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewRoles); err != nil {
		return nil, err
	}

	role, err := u.roleRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find role %d: %+v", id, err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return converter.RoleToResponse(role), nil
}

func (u *roleUsecase) CreateRole(ctx context.Context, req *dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionCreateRoles); err != nil {
		return nil, err
	}

	var roleID int
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.checkPermissionNames(ctx, req.Permissions); err != nil {
			return err
		}

		role := &entity.Role{
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
		}
		if err := u.roleRepo.Create(ctx, role); err != nil {
			if isDuplicateKeyError(err, "name") {
				return ErrRoleAlreadyExists
			}
			return err
		}
		roleID = role.ID

		if len(req.Permissions) > 0 {
			if err := u.roleRepo.SyncPermissions(ctx, role.ID, req.Permissions); err != nil {
				return err
			}
		}

		return u.auditService.LogCreate(ctx, entity.AuditActionRoleCreate, "role", fmt.Sprint(role.ID), map[string]interface{}{
			"name":        role.Name,
			"permissions": req.Permissions,
		})
	})
	if err != nil {
		if !isRoleRuleError(err) {
			u.log.Warnf("Failed to create role: %+v", err)
		}
		return nil, err
	}

	return u.reload(ctx, roleID)
}

func (u *roleUsecase) UpdateRole(ctx context.Context, id int, req *dto.UpdateRoleRequest) (*dto.RoleResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionEditRoles); err != nil {
		return nil, err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}

		name := strings.TrimSpace(req.Name)
		if isBuiltInRole(role.Name) && name != role.Name {
			return ErrProtectedRole
		}

		old := map[string]interface{}{"name": role.Name, "description": role.Description}
		role.Name = name
		role.Description = req.Description
		role.Permissions = nil
		if err := u.roleRepo.Update(ctx, role); err != nil {
			if isDuplicateKeyError(err, "name") {
				return ErrRoleAlreadyExists
			}
			return err
		}

		return u.auditService.LogUpdate(ctx, entity.AuditActionRoleUpdate, "role", fmt.Sprint(id), old,
			map[string]interface{}{"name": role.Name, "description": role.Description})
	})
	if err != nil {
		if !isRoleRuleError(err) {
			u.log.Warnf("Failed to update role %d: %+v", id, err)
		}
		return nil, err
	}

	u.invalidateAll(ctx)
	return u.reload(ctx, id)
}

func (u *roleUsecase) DeleteRole(ctx context.Context, id int) error {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionDeleteRoles); err != nil {
		return err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}
		if isBuiltInRole(role.Name) {
			return ErrProtectedRole
		}

		if err := u.roleRepo.Delete(ctx, id); err != nil {
			return err
		}
		return u.auditService.LogDelete(ctx, entity.AuditActionRoleDelete, "role", fmt.Sprint(id), map[string]interface{}{"name": role.Name})
	})
	if err != nil {
		if !isRoleRuleError(err) {
			u.log.Warnf("Failed to delete role %d: %+v", id, err)
		}
		return err
	}

	u.invalidateAll(ctx)
	return nil
}

func (u *roleUsecase) ListPermissions(ctx context.Context) ([]dto.PermissionResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewRoles); err != nil {
		return nil, err
	}

	permissions, err := u.roleRepo.FindAllPermissions(ctx)
	if err != nil {
		u.log.Warnf("Failed to find permissions: %+v", err)
		return nil, err
	}
	return converter.PermissionsToResponses(permissions), nil
}

// SyncPermissions replaces the permission set of a role
func (u *roleUsecase) SyncPermissions(ctx context.Context, id int, req *dto.SyncPermissionsRequest) (*dto.RoleResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionAssignPermissions); err != nil {
		return nil, err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}
		if err := u.checkPermissionNames(ctx, req.Permissions); err != nil {
			return err
		}

		old := converter.RoleToResponse(role).Permissions
		if err := u.roleRepo.SyncPermissions(ctx, id, req.Permissions); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, entity.AuditActionRoleUpdate, "role", fmt.Sprint(id),
			map[string]interface{}{"permissions": old},
			map[string]interface{}{"permissions": req.Permissions},
		)
	})
	if err != nil {
		if !isRoleRuleError(err) {
			u.log.Warnf("Failed to sync permissions of role %d: %+v", id, err)
		}
		return nil, err
	}

	u.invalidateAll(ctx)
	return u.reload(ctx, id)
}

// AssignRole grants a role to a user
func (u *roleUsecase) AssignRole(ctx context.Context, userID uuid.UUID, req *dto.AssignRoleRequest) (*dto.UserResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionAssignPermissions); err != nil {
		return nil, err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		role, err := u.roleRepo.FindByName(ctx, strings.TrimSpace(req.Role))
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}

		if err := u.roleRepo.AssignToUser(ctx, userID, role.ID); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, entity.AuditActionRoleAssign, "user", userID.String(),
			map[string]interface{}{"roles": user.RoleNames()},
			map[string]interface{}{"role_added": role.Name},
		)
	})
	if err != nil {
		if !isRoleRuleError(err) {
			u.log.Warnf("Failed to assign role to user %s: %+v", userID, err)
		}
		return nil, err
	}

	if err := u.aclCache.InvalidateUser(ctx, userID); err != nil {
		u.log.Warnf("Failed to invalidate ACL cache for user %s: %+v", userID, err)
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		u.log.Warnf("Failed to reload user %s: %+v", userID, err)
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

// checkPermissionNames rejects names missing from the permission catalog
func (u *roleUsecase) checkPermissionNames(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	known, err := u.roleRepo.FindAllPermissions(ctx)
	if err != nil {
		return err
	}
	catalog := make(map[string]bool, len(known))
	for _, p := range known {
		catalog[p.Name] = true
	}

	var unknown []string
	for _, name := range names {
		if !catalog[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return newValidationError(map[string]string{
			"permissions": "unknown permissions: " + strings.Join(unknown, ", "),
		})
	}
	return nil
}

func (u *roleUsecase) reload(ctx context.Context, id int) (*dto.RoleResponse, error) {
	role, err := u.roleRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to reload role %d: %+v", id, err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return converter.RoleToResponse(role), nil
}

func (u *roleUsecase) invalidateAll(ctx context.Context) {
	if err := u.aclCache.InvalidateAll(ctx); err != nil {
		u.log.Warnf("Failed to invalidate ACL cache: %+v", err)
	}
}

func isRoleRuleError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrRoleAlreadyExists) ||
		errors.Is(err, ErrProtectedRole) ||
		errors.Is(err, ErrUserNotFound)
}
