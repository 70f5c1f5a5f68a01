package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type PatientAdminHandler struct {
	patientAdminUsecase usecase.PatientAdminUsecase
	validator           *validator.CustomValidator
}

func NewPatientAdminHandler(patientAdminUsecase usecase.PatientAdminUsecase, validator *validator.CustomValidator) *PatientAdminHandler {
	return &PatientAdminHandler{
		patientAdminUsecase: patientAdminUsecase,
		validator:           validator,
	}
}

// List handles the paginated patient listing
// @Summary List patients
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name, email or matric number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/patients [get]
func (h *PatientAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	result, err := h.patientAdminUsecase.ListPatients(r.Context(), &dto.PatientListQuery{
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err, "Failed to get patients")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Patients retrieved successfully",
		result.Patients, response.NewMeta(page, limit, result.Total))
}

func (h *PatientAdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientAdminUsecase.GetPatient(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

// Update handles the admin edit of a patient account
// @Summary Update patient
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body dto.UpdatePatientRequest true "Update Patient Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/patients/{id} [put]
func (h *PatientAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	var req dto.UpdatePatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.patientAdminUsecase.UpdatePatient(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient updated successfully", user)
}

func (h *PatientAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	if err := h.patientAdminUsecase.DeletePatient(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient deleted successfully", nil)
}

func (h *PatientAdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.patientAdminUsecase.RegistrationStats(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get registration stats")
		return
	}

	response.Success(w, http.StatusOK, "Registration stats retrieved successfully", stats)
}
