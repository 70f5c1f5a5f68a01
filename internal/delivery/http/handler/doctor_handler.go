package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
)

type DoctorHandler struct {
	lifecycleUsecase    usecase.AppointmentLifecycleUsecase
	prescriptionUsecase usecase.PrescriptionUsecase
	staffUsecase        usecase.StaffUsecase
}

func NewDoctorHandler(
	lifecycleUsecase usecase.AppointmentLifecycleUsecase,
	prescriptionUsecase usecase.PrescriptionUsecase,
	staffUsecase usecase.StaffUsecase,
) *DoctorHandler {
	return &DoctorHandler{
		lifecycleUsecase:    lifecycleUsecase,
		prescriptionUsecase: prescriptionUsecase,
		staffUsecase:        staffUsecase,
	}
}

// ListDoctors returns the doctor directory, optionally narrowed to one specialty
// @Summary List doctors
// @Tags Doctors
// @Security BearerAuth
// @Produce json
// @Param specialty query string false "Specialization name"
// @Success 200 {object} response.Response
// @Router /doctors [get]
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.staffUsecase.ListDoctors(r.Context(), r.URL.Query().Get("specialty"))
	if err != nil {
		writeError(w, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// GetAppointments lists appointments assigned to the calling doctor
// @Summary List my patients' appointments
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, completed or cancelled"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /doctor/appointments [get]
func (h *DoctorHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	query := appointmentListQuery(r)

	result, err := h.lifecycleUsecase.GetDoctorAppointments(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully",
		result.Appointments, response.NewMeta(query.Page, query.Limit, result.Total))
}

// UpdateClinicalRecord records vitals, diagnosis and notes
// @Summary Update clinical record
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.UpdateClinicalRecordRequest true "Clinical Record"
// @Success 200 {object} response.Response
// @Router /doctor/appointments/{id}/clinical [put]
func (h *DoctorHandler) UpdateClinicalRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateClinicalRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	appointment, err := h.lifecycleUsecase.UpdateClinicalRecord(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update clinical record")
		return
	}

	response.Success(w, http.StatusOK, "Clinical record updated successfully", appointment)
}

// CreatePrescription prescribes a medication for an appointment
// @Summary Create prescription
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.CreatePrescriptionRequest true "Prescription"
// @Success 201 {object} response.Response
// @Router /doctor/appointments/{id}/prescriptions [post]
func (h *DoctorHandler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.CreatePrescriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prescription, err := h.prescriptionUsecase.Create(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to create prescription")
		return
	}

	response.Success(w, http.StatusCreated, "Prescription created successfully", prescription)
}
