package dto

import "github.com/google/uuid"

// PatientProfileResponse represents patient profile data in responses
type PatientProfileResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	MatricNo         string    `json:"matric_no,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	DateOfBirth      string    `json:"date_of_birth,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	BloodType        string    `json:"blood_type,omitempty"`
	Genotype         string    `json:"genotype,omitempty"`
	HeightCM         *float64  `json:"height_cm,omitempty"`
	WeightKG         *float64  `json:"weight_kg,omitempty"`
}

// PatientListQuery carries the query string of the patient administration listing
type PatientListQuery struct {
	Search string `json:"search" validate:"omitempty,max=255"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// UpdatePatientRequest is the admin edit of a patient account.
// Role moves the account to another role, patient keeps it where it is.
type UpdatePatientRequest struct {
	FullName string `json:"full_name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	MatricNo string `json:"matric_no" validate:"omitempty,max=50"`
	Role     string `json:"role" validate:"required"`
}

type PatientListResponse struct {
	Patients []UserResponse `json:"patients"`
	Total    int64          `json:"total"`
}

// PatientDetailResponse omits the appointment history unless the caller may view medical records
type PatientDetailResponse struct {
	Patient           UserResponse          `json:"patient"`
	Appointments      []AppointmentResponse `json:"appointments,omitempty"`
	AppointmentsTotal int64                 `json:"appointments_total"`
}

type DailyRegistration struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// RegistrationStatsResponse is one entry per day of the window, zero days included
type RegistrationStatsResponse struct {
	Days  []DailyRegistration `json:"days"`
	Total int64               `json:"total"`
}
