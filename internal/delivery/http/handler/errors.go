package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps usecase errors to responses. Anything unknown is a 500 with
// the caller's message; the usecase has already logged it.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, verr.Fields)

	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, usecase.ErrAppointmentNotOwned),
		errors.Is(err, usecase.ErrAppointmentNotAssigned),
		errors.Is(err, usecase.ErrCannotDeleteSelf):
		response.Forbidden(w, err.Error())

	case errors.Is(err, usecase.ErrAppointmentNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrPatientNotFound),
		errors.Is(err, usecase.ErrRoleNotFound),
		errors.Is(err, usecase.ErrSpecializationNotFound),
		errors.Is(err, usecase.ErrMedicationNotFound),
		errors.Is(err, usecase.ErrPrescriptionNotFound),
		errors.Is(err, usecase.ErrAuditLogNotFound):
		response.NotFound(w, err.Error())

	case errors.Is(err, usecase.ErrSlotUnavailable),
		errors.Is(err, usecase.ErrBookingConflict),
		errors.Is(err, usecase.ErrEmailAlreadyExists),
		errors.Is(err, usecase.ErrMatricNoAlreadyExists),
		errors.Is(err, usecase.ErrRoleAlreadyExists),
		errors.Is(err, usecase.ErrSpecializationAlreadyExists),
		errors.Is(err, usecase.ErrMedicationInUse):
		response.Conflict(w, err.Error())

	case errors.Is(err, usecase.ErrTooManyPendingAppointments),
		errors.Is(err, usecase.ErrDoctorSpecialtyMismatch),
		errors.Is(err, usecase.ErrIllegalStateTransition),
		errors.Is(err, usecase.ErrProtectedRole),
		errors.Is(err, usecase.ErrInvalidDateFormat):
		response.Error(w, http.StatusUnprocessableEntity, err.Error(), nil)

	default:
		response.InternalServerError(w, fallback)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name, label string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id < 1 {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return 0, false
	}
	return id, true
}

// pageParams reads page and limit from the query string with defaults applied
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return dto.NormalizePage(page, limit)
}

func appointmentListQuery(r *http.Request) *dto.AppointmentListQuery {
	q := r.URL.Query()
	page, limit := pageParams(r)
	return &dto.AppointmentListQuery{
		Status:     q.Get("status"),
		DoctorName: q.Get("doctor_name"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
		Page:       page,
		Limit:      limit,
	}
}
