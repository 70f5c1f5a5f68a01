package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointmentUsecase struct {
	bookErr  error
	booked   *dto.BookAppointmentRequest
	cancelID uuid.UUID
	listed   *dto.AppointmentListQuery
}

func (s *stubAppointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	s.booked = req
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &dto.AppointmentResponse{ID: uuid.New(), Status: "pending"}, nil
}

func (s *stubAppointmentUsecase) GetMyAppointments(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	s.listed = query
	return &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}, Total: 23}, nil
}

func (s *stubAppointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return nil, usecase.ErrAppointmentNotFound
}

func (s *stubAppointmentUsecase) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return usecase.ErrAppointmentNotOwned
}

func (s *stubAppointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	s.cancelID = id
	return nil
}

func newPatientRouter(appointments usecase.AppointmentUsecase) *mux.Router {
	h := NewPatientHandler(appointments, nil)
	r := mux.NewRouter()
	r.HandleFunc("/appointments", h.BookAppointment).Methods(http.MethodPost)
	r.HandleFunc("/appointments/mine", h.GetMyAppointments).Methods(http.MethodGet)
	r.HandleFunc("/appointments/{id}", h.GetAppointment).Methods(http.MethodGet)
	r.HandleFunc("/appointments/{id}", h.DeleteAppointment).Methods(http.MethodDelete)
	r.HandleFunc("/appointments/{id}/cancel", h.CancelAppointment).Methods(http.MethodPost)
	return r
}

func serve(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

const bookingBody = `{"doctor_id":"7b0c1f2e-9f55-4a8e-bb43-3d2a4f6d1e10","specialty":"Cardiology",` +
	`"appointment_date":"2025-01-09","appointment_time":"morning","visit_type":"in-person"}`

func TestBookAppointment_Created(t *testing.T) {
	stub := &stubAppointmentUsecase{}

	rec, env := serve(t, newPatientRouter(stub), http.MethodPost, "/appointments", bookingBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, stub.booked)
	assert.Equal(t, "Cardiology", stub.booked.Specialty)
}

func TestBookAppointment_MalformedBody(t *testing.T) {
	stub := &stubAppointmentUsecase{}

	rec, env := serve(t, newPatientRouter(stub), http.MethodPost, "/appointments", "{")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Nil(t, stub.booked)
}

func TestBookAppointment_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &usecase.ValidationError{Fields: map[string]string{"visit_type": "invalid"}}, http.StatusBadRequest},
		{"unauthenticated", usecase.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"too many pending", usecase.ErrTooManyPendingAppointments, http.StatusUnprocessableEntity},
		{"specialty mismatch", usecase.ErrDoctorSpecialtyMismatch, http.StatusUnprocessableEntity},
		{"slot taken", usecase.ErrSlotUnavailable, http.StatusConflict},
		{"lost race", usecase.ErrBookingConflict, http.StatusConflict},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAppointmentUsecase{bookErr: tt.err}

			rec, env := serve(t, newPatientRouter(stub), http.MethodPost, "/appointments", bookingBody)

			assert.Equal(t, tt.code, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestBookAppointment_ValidationFieldsInBody(t *testing.T) {
	stub := &stubAppointmentUsecase{bookErr: &usecase.ValidationError{Fields: map[string]string{"appointment_date": "must not be in the past"}}}

	_, env := serve(t, newPatientRouter(stub), http.MethodPost, "/appointments", bookingBody)

	fields, ok := env.Error.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must not be in the past", fields["appointment_date"])
}

func TestGetMyAppointments_PassesFiltersAndPaginates(t *testing.T) {
	stub := &stubAppointmentUsecase{}

	rec, env := serve(t, newPatientRouter(stub), http.MethodGet,
		"/appointments/mine?status=pending&doctor_name=Ada&page=2&limit=10", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.listed)
	assert.Equal(t, "pending", stub.listed.Status)
	assert.Equal(t, "Ada", stub.listed.DoctorName)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestAppointmentByID(t *testing.T) {
	stub := &stubAppointmentUsecase{}
	router := newPatientRouter(stub)
	id := uuid.New()

	rec, _ := serve(t, router, http.MethodGet, "/appointments/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, router, http.MethodGet, "/appointments/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(t, router, http.MethodDelete, "/appointments/"+id.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, router, http.MethodPost, "/appointments/"+id.String()+"/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, stub.cancelID)
}
