package dto

import "time"

// Request DTOs

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type SyncPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"dive,required"`
}

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// Response DTOs

type RoleResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PermissionResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
