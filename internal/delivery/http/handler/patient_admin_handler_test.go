package handler

import (
	"context"
	"net/http"
	"testing"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPatientAdminUsecase struct {
	listed    *dto.PatientListQuery
	updated   *dto.UpdatePatientRequest
	deleteErr error
}

func (s *stubPatientAdminUsecase) ListPatients(ctx context.Context, query *dto.PatientListQuery) (*dto.PatientListResponse, error) {
	s.listed = query
	return &dto.PatientListResponse{Patients: []dto.UserResponse{}, Total: 41}, nil
}

func (s *stubPatientAdminUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientDetailResponse, error) {
	return &dto.PatientDetailResponse{Patient: dto.UserResponse{ID: id}}, nil
}

func (s *stubPatientAdminUsecase) UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.UserResponse, error) {
	s.updated = req
	return &dto.UserResponse{ID: id, FullName: req.FullName}, nil
}

func (s *stubPatientAdminUsecase) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.deleteErr
}

func (s *stubPatientAdminUsecase) RegistrationStats(ctx context.Context) (*dto.RegistrationStatsResponse, error) {
	return &dto.RegistrationStatsResponse{}, nil
}

func newPatientAdminRouter(patients usecase.PatientAdminUsecase) *mux.Router {
	h := NewPatientAdminHandler(patients, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/admin/patients", h.List).Methods(http.MethodGet)
	r.HandleFunc("/admin/patients/stats", h.Stats).Methods(http.MethodGet)
	r.HandleFunc("/admin/patients/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/admin/patients/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/admin/patients/{id}", h.Delete).Methods(http.MethodDelete)
	return r
}

func TestListPatients_SearchAndMeta(t *testing.T) {
	stub := &stubPatientAdminUsecase{}

	rec, env := serve(t, newPatientAdminRouter(stub), http.MethodGet, "/admin/patients?search=ada&page=3&limit=20", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.listed)
	assert.Equal(t, "ada", stub.listed.Search)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.Page)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestUpdatePatient_ValidatesBody(t *testing.T) {
	stub := &stubPatientAdminUsecase{}
	path := "/admin/patients/" + uuid.NewString()

	rec, env := serve(t, newPatientAdminRouter(stub), http.MethodPut, path, `{"full_name":"Al","email":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.updated)
	fields, ok := env.Error.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "full_name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "role")

	rec, _ = serve(t, newPatientAdminRouter(stub), http.MethodPut, path,
		`{"full_name":"Ada Obi","email":"ada@clinic.test","role":"patient"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.updated)
	assert.Equal(t, "Ada Obi", stub.updated.FullName)
}

func TestDeletePatient_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"deleted", nil, http.StatusOK},
		{"not a patient", usecase.ErrPatientNotFound, http.StatusNotFound},
		{"self", usecase.ErrCannotDeleteSelf, http.StatusForbidden},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPatientAdminUsecase{deleteErr: tt.err}

			rec, _ := serve(t, newPatientAdminRouter(stub), http.MethodDelete, "/admin/patients/"+uuid.NewString(), "")

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestPatientStatsRouteIsNotAnID(t *testing.T) {
	rec, _ := serve(t, newPatientAdminRouter(&stubPatientAdminUsecase{}), http.MethodGet, "/admin/patients/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
