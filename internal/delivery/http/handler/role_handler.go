package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type RoleHandler struct {
	roleUsecase usecase.RoleUsecase
	validator   *validator.CustomValidator
}

func NewRoleHandler(roleUsecase usecase.RoleUsecase, validator *validator.CustomValidator) *RoleHandler {
	return &RoleHandler{
		roleUsecase: roleUsecase,
		validator:   validator,
	}
}

func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleUsecase.ListRoles(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get roles")
		return
	}

	response.Success(w, http.StatusOK, "Roles retrieved successfully", roles)
}

func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id", "role")
	if !ok {
		return
	}

	role, err := h.roleUsecase.GetRole(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get role")
		return
	}

	response.Success(w, http.StatusOK, "Role retrieved successfully", role)
}

func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	role, err := h.roleUsecase.CreateRole(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create role")
		return
	}

	response.Success(w, http.StatusCreated, "Role created successfully", role)
}

func (h *RoleHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id", "role")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	role, err := h.roleUsecase.UpdateRole(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update role")
		return
	}

	response.Success(w, http.StatusOK, "Role updated successfully", role)
}

func (h *RoleHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id", "role")
	if !ok {
		return
	}

	if err := h.roleUsecase.DeleteRole(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete role")
		return
	}

	response.Success(w, http.StatusOK, "Role deleted successfully", nil)
}

func (h *RoleHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.roleUsecase.ListPermissions(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get permissions")
		return
	}

	response.Success(w, http.StatusOK, "Permissions retrieved successfully", permissions)
}

// SyncPermissions replaces the permission set of a role
func (h *RoleHandler) SyncPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id", "role")
	if !ok {
		return
	}

	var req dto.SyncPermissionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	role, err := h.roleUsecase.SyncPermissions(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to sync permissions")
		return
	}

	response.Success(w, http.StatusOK, "Permissions updated successfully", role)
}

func (h *RoleHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.roleUsecase.AssignRole(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err, "Failed to assign role")
		return
	}

	response.Success(w, http.StatusOK, "Role assigned successfully", user)
}
