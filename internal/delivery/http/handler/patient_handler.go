package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
)

// PatientHandler serves the patient side of appointments. Requests are
// validated by the usecase so the pending limit is checked first.
type PatientHandler struct {
	appointmentUsecase  usecase.AppointmentUsecase
	prescriptionUsecase usecase.PrescriptionUsecase
}

func NewPatientHandler(appointmentUsecase usecase.AppointmentUsecase, prescriptionUsecase usecase.PrescriptionUsecase) *PatientHandler {
	return &PatientHandler{
		appointmentUsecase:  appointmentUsecase,
		prescriptionUsecase: prescriptionUsecase,
	}
}

// BookAppointment handles booking a new appointment
// @Summary Book an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookAppointmentRequest true "Book Appointment Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments [post]
func (h *PatientHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.BookAppointment(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

// GetMyAppointments lists the caller's appointments
// @Summary List my appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, completed or cancelled"
// @Param doctor_name query string false "Doctor name"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /appointments/mine [get]
func (h *PatientHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	query := appointmentListQuery(r)

	result, err := h.appointmentUsecase.GetMyAppointments(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully",
		result.Appointments, response.NewMeta(query.Page, query.Limit, result.Total))
}

// GetAppointment returns one appointment visible to the caller
// @Summary Get appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [get]
func (h *PatientHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// GetPrescriptions lists prescriptions written for an appointment
// @Summary List appointment prescriptions
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/prescriptions [get]
func (h *PatientHandler) GetPrescriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	prescriptions, err := h.prescriptionUsecase.GetByAppointment(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

// DeleteAppointment removes one of the caller's pending appointments
// @Summary Delete appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [delete]
func (h *PatientHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	if err := h.appointmentUsecase.DeleteAppointment(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment deleted successfully", nil)
}

// CancelAppointment moves a pending appointment to cancelled
// @Summary Cancel appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments/{id}/cancel [post]
func (h *PatientHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	if err := h.appointmentUsecase.CancelAppointment(r.Context(), id); err != nil {
		writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}
