package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegisterPatientRequest is the self-service patient sign-up form
type RegisterPatientRequest struct {
	FullName             string `json:"full_name" validate:"required,min=2,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone" validate:"omitempty,min=7,max=20"`
	MatricNo             string `json:"matric_no" validate:"omitempty,max=50"`
	Gender               string `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth          string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address              string `json:"address" validate:"omitempty,max=500"`
	EmergencyContact     string `json:"emergency_contact" validate:"omitempty,max=255"`
	BloodType            string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Genotype             string `json:"genotype" validate:"omitempty,oneof=AA AS SS AC SC"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID              uuid.UUID               `json:"id"`
	Email           string                  `json:"email"`
	FullName        string                  `json:"full_name"`
	Phone           string                  `json:"phone,omitempty"`
	Roles           []string                `json:"roles"`
	Specializations []string                `json:"specializations,omitempty"`
	PatientProfile  *PatientProfileResponse `json:"patient_profile,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// UserSummary is the short form of a user embedded in other resources
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email,omitempty"`
}
