package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
)

type MedicationHandler struct {
	medicationUsecase usecase.MedicationUsecase
	dashboardUsecase  usecase.DashboardUsecase
}

func NewMedicationHandler(medicationUsecase usecase.MedicationUsecase, dashboardUsecase usecase.DashboardUsecase) *MedicationHandler {
	return &MedicationHandler{
		medicationUsecase: medicationUsecase,
		dashboardUsecase:  dashboardUsecase,
	}
}

// Create handles medication creation
// @Summary Create a new medication
// @Description Stock status is derived from the stock level
// @Tags Medications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateMedicationRequest true "Create Medication Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /medications [post]
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMedicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	medication, err := h.medicationUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create medication")
		return
	}

	response.Success(w, http.StatusCreated, "Medication created successfully", medication)
}

// GetAll handles getting all medications
// @Summary Get all medications
// @Description Get medications with search, expiry range and pagination
// @Tags Medications
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name contains"
// @Param expiry_from query string false "YYYY-MM-DD"
// @Param expiry_to query string false "YYYY-MM-DD"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /medications [get]
func (h *MedicationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	query := &dto.MedicationListQuery{
		Search:     q.Get("search"),
		ExpiryFrom: q.Get("expiry_from"),
		ExpiryTo:   q.Get("expiry_to"),
		Page:       page,
		Limit:      limit,
	}

	result, err := h.medicationUsecase.GetAll(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get medications")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Medications retrieved successfully",
		result.Medications, response.NewMeta(page, limit, result.Total))
}

// GetByID handles getting a medication by ID
// @Summary Get medication by ID
// @Tags Medications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Medication ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /medications/{id} [get]
func (h *MedicationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "medication")
	if !ok {
		return
	}

	medication, err := h.medicationUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get medication")
		return
	}

	response.Success(w, http.StatusOK, "Medication retrieved successfully", medication)
}

// Update handles medication update
// @Summary Update medication
// @Tags Medications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Medication ID"
// @Param request body dto.UpdateMedicationRequest true "Update Medication Request"
// @Success 200 {object} response.Response
// @Router /medications/{id} [put]
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "medication")
	if !ok {
		return
	}

	var req dto.UpdateMedicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	medication, err := h.medicationUsecase.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update medication")
		return
	}

	response.Success(w, http.StatusOK, "Medication updated successfully", medication)
}

// Restock adds units to a medication. An empty body uses the default amount.
// @Summary Restock medication
// @Tags Medications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Medication ID"
// @Param request body dto.RestockRequest false "Restock Request"
// @Success 200 {object} response.Response
// @Router /medications/{id}/restock [post]
func (h *MedicationHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "medication")
	if !ok {
		return
	}

	var req dto.RestockRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	medication, err := h.medicationUsecase.Restock(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to restock medication")
		return
	}

	response.Success(w, http.StatusOK, "Medication restocked successfully", medication)
}

// Delete handles medication deletion
// @Summary Delete medication
// @Tags Medications
// @Security BearerAuth
// @Param id path string true "Medication ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /medications/{id} [delete]
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "medication")
	if !ok {
		return
	}

	if err := h.medicationUsecase.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete medication")
		return
	}

	response.Success(w, http.StatusOK, "Medication deleted successfully", nil)
}

func (h *MedicationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardUsecase.Pharmacy(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}
