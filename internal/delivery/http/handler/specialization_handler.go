package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type SpecializationHandler struct {
	specializationUsecase usecase.SpecializationUsecase
	validator             *validator.CustomValidator
}

func NewSpecializationHandler(specializationUsecase usecase.SpecializationUsecase, validator *validator.CustomValidator) *SpecializationHandler {
	return &SpecializationHandler{
		specializationUsecase: specializationUsecase,
		validator:             validator,
	}
}

func (h *SpecializationHandler) List(w http.ResponseWriter, r *http.Request) {
	specializations, err := h.specializationUsecase.List(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get specializations")
		return
	}

	response.Success(w, http.StatusOK, "Specializations retrieved successfully", specializations)
}

func (h *SpecializationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SpecializationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	specialization, err := h.specializationUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create specialization")
		return
	}

	response.Success(w, http.StatusCreated, "Specialization created successfully", specialization)
}

func (h *SpecializationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id", "specialization")
	if !ok {
		return
	}

	var req dto.SpecializationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	specialization, err := h.specializationUsecase.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update specialization")
		return
	}

	response.Success(w, http.StatusOK, "Specialization updated successfully", specialization)
}

func (h *SpecializationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id", "specialization")
	if !ok {
		return
	}

	if err := h.specializationUsecase.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete specialization")
		return
	}

	response.Success(w, http.StatusOK, "Specialization deleted successfully", nil)
}
