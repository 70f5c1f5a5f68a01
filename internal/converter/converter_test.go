package converter

import (
	"testing"
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentToResponse(t *testing.T) {
	method := entity.PaymentMethodCash
	status := entity.PaymentStatusPaid
	amount := decimal.RequireFromString("150.00")
	medID := uuid.New()

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		Specialty:       "Cardiology",
		AppointmentDate: time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC),
		AppointmentTime: entity.SlotAfternoon,
		VisitType:       entity.VisitTypeVirtual,
		Status:          entity.AppointmentStatusCompleted,
		PaymentMethod:   &method,
		PaymentAmount:   &amount,
		PaymentStatus:   &status,
		Doctor:          &entity.User{FullName: "Grace Hopper"},
		Prescriptions: []entity.Prescription{
			{ID: uuid.New(), MedicationID: medID, Quantity: "2 tabs", PaymentStatus: entity.PaymentStatusPending},
		},
	}

	resp := AppointmentToResponse(appointment)
	require.NotNil(t, resp)
	assert.Equal(t, "2026-05-04", resp.AppointmentDate)
	assert.Equal(t, "afternoon", resp.AppointmentTime)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "cash", *resp.PaymentMethod)
	assert.Equal(t, "paid", *resp.PaymentStatus)
	assert.True(t, amount.Equal(*resp.PaymentAmount))
	assert.Equal(t, "Grace Hopper", resp.Doctor.FullName)
	assert.Nil(t, resp.Patient)
	require.Len(t, resp.Prescriptions, 1)
	assert.Equal(t, medID, resp.Prescriptions[0].MedicationID)
}

func TestUserToResponse(t *testing.T) {
	dob := time.Date(2001, time.January, 15, 0, 0, 0, 0, time.UTC)
	user := &entity.User{
		ID:              uuid.New(),
		Email:           "ada@example.com",
		FullName:        "Ada Obi",
		Roles:           []entity.Role{{Name: entity.RolePatient}},
		Specializations: []entity.Specialization{{Name: "ENT"}},
		PatientProfile:  &entity.PatientProfile{MatricNo: "CSC/19/001", DateOfBirth: &dob},
	}

	resp := UserToResponse(user)
	require.NotNil(t, resp)
	assert.Equal(t, []string{entity.RolePatient}, resp.Roles)
	assert.Equal(t, []string{"ENT"}, resp.Specializations)
	assert.Equal(t, "2001-01-15", resp.PatientProfile.DateOfBirth)
	assert.Nil(t, UserToResponse(nil))
}

func TestMedicationToResponse_NoExpiry(t *testing.T) {
	resp := MedicationToResponse(&entity.Medication{Name: "Paracetamol", Status: entity.MedicationLowStock, StockLevel: 5})
	assert.Equal(t, "Low Stock", resp.Status)
	assert.Empty(t, resp.Expiry)
}
