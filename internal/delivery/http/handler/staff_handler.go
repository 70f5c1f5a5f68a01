package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type StaffHandler struct {
	staffUsecase usecase.StaffUsecase
	validator    *validator.CustomValidator
}

func NewStaffHandler(staffUsecase usecase.StaffUsecase, validator *validator.CustomValidator) *StaffHandler {
	return &StaffHandler{
		staffUsecase: staffUsecase,
		validator:    validator,
	}
}

// CreateStaff handles creating a doctor, cashier or pharmacist account
// @Summary Create staff account
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateStaffRequest true "Create Staff Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/staff [post]
func (h *StaffHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStaffRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.staffUsecase.CreateStaff(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create staff")
		return
	}

	response.Success(w, http.StatusCreated, "Staff created successfully", user)
}

func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.staffUsecase.ListStaff(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err, "Failed to get staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff retrieved successfully", staff)
}

func (h *StaffHandler) SyncSpecializations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.SyncSpecializationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.staffUsecase.SyncSpecializations(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err, "Failed to update specializations")
		return
	}

	response.Success(w, http.StatusOK, "Specializations updated successfully", user)
}

func (h *StaffHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.staffUsecase.DeleteStaff(r.Context(), userID); err != nil {
		writeError(w, err, "Failed to delete staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff deleted successfully", nil)
}
