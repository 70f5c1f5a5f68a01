package dto

import "github.com/google/uuid"

// CreateStaffRequest creates a staff account with one role
type CreateStaffRequest struct {
	FullName          string `json:"full_name" validate:"required,min=2,max=255"`
	Email             string `json:"email" validate:"required,email,max=255"`
	Password          string `json:"password" validate:"required,min=8"`
	Phone             string `json:"phone" validate:"omitempty,min=7,max=20"`
	Role              string `json:"role" validate:"required,oneof=doctor cashier pharmacist super-admin"`
	SpecializationIDs []int  `json:"specialization_ids" validate:"omitempty,dive,min=1"`
}

type SyncSpecializationsRequest struct {
	SpecializationIDs []int `json:"specialization_ids" validate:"dive,min=1"`
}

// DoctorResponse is the doctor directory entry shown to patients
type DoctorResponse struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Specializations []string  `json:"specializations"`
}
