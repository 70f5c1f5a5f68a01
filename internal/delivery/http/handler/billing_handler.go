package handler

import (
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
)

// BillingHandler serves the cashier desk
type BillingHandler struct {
	lifecycleUsecase    usecase.AppointmentLifecycleUsecase
	prescriptionUsecase usecase.PrescriptionUsecase
	dashboardUsecase    usecase.DashboardUsecase
}

func NewBillingHandler(
	lifecycleUsecase usecase.AppointmentLifecycleUsecase,
	prescriptionUsecase usecase.PrescriptionUsecase,
	dashboardUsecase usecase.DashboardUsecase,
) *BillingHandler {
	return &BillingHandler{
		lifecycleUsecase:    lifecycleUsecase,
		prescriptionUsecase: prescriptionUsecase,
		dashboardUsecase:    dashboardUsecase,
	}
}

// GetAwaitingPayment lists pending appointments
// @Summary List appointments awaiting payment
// @Tags Billing
// @Security BearerAuth
// @Produce json
// @Param doctor_name query string false "Doctor name"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /billing/appointments [get]
func (h *BillingHandler) GetAwaitingPayment(w http.ResponseWriter, r *http.Request) {
	query := appointmentListQuery(r)

	result, err := h.lifecycleUsecase.GetAwaitingPayment(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully",
		result.Appointments, response.NewMeta(query.Page, query.Limit, result.Total))
}

// ProcessPayment records payment and completes the appointment
// @Summary Process payment
// @Tags Billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.ProcessPaymentRequest true "Payment"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /billing/appointments/{id}/payment [post]
func (h *BillingHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.ProcessPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	appointment, err := h.lifecycleUsecase.ProcessPayment(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to process payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment processed successfully", appointment)
}

// GetPrescriptions lists prescriptions for billing
// @Summary List prescriptions
// @Tags Billing
// @Security BearerAuth
// @Produce json
// @Param payment_status query string false "pending, paid or failed"
// @Success 200 {object} response.Response
// @Router /billing/prescriptions [get]
func (h *BillingHandler) GetPrescriptions(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := h.prescriptionUsecase.GetAll(r.Context(), r.URL.Query().Get("payment_status"), page, limit)
	if err != nil {
		writeError(w, err, "Failed to get prescriptions")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Prescriptions retrieved successfully",
		result.Prescriptions, response.NewMeta(page, limit, result.Total))
}

// UpdatePrescriptionBilling sets the amount and payment state of a prescription
// @Summary Update prescription billing
// @Tags Billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Prescription ID"
// @Param request body dto.UpdatePrescriptionBillingRequest true "Billing"
// @Success 200 {object} response.Response
// @Router /billing/prescriptions/{id} [put]
func (h *BillingHandler) UpdatePrescriptionBilling(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "prescription")
	if !ok {
		return
	}

	var req dto.UpdatePrescriptionBillingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prescription, err := h.prescriptionUsecase.UpdateBilling(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription updated successfully", prescription)
}

// Dashboard returns today's desk summary and monthly revenue
// @Summary Cashier dashboard
// @Tags Billing
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /billing/dashboard [get]
func (h *BillingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardUsecase.Cashier(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}
