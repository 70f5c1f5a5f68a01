package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

// RoleToResponse converts a Role entity with its loaded permissions
func RoleToResponse(role *entity.Role) *dto.RoleResponse {
	if role == nil {
		return nil
	}

	permissions := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		permissions = append(permissions, p.Name)
	}

	return &dto.RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: permissions,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func RolesToResponses(roles []entity.Role) []dto.RoleResponse {
	responses := make([]dto.RoleResponse, len(roles))
	for i := range roles {
		responses[i] = *RoleToResponse(&roles[i])
	}
	return responses
}

func PermissionsToResponses(permissions []entity.Permission) []dto.PermissionResponse {
	responses := make([]dto.PermissionResponse, len(permissions))
	for i, p := range permissions {
		responses[i] = dto.PermissionResponse{ID: p.ID, Name: p.Name}
	}
	return responses
}
