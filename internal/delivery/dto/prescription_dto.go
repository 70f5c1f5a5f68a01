package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreatePrescriptionRequest struct {
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     string `json:"quantity" validate:"required,max=100"`
	Instructions string `json:"instructions" validate:"omitempty,max=2000"`
}

type UpdatePrescriptionBillingRequest struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card bank_transfer other"`
	PaymentAmount *decimal.Decimal `json:"payment_amount" validate:"required"`
	PaymentStatus string           `json:"payment_status" validate:"required,oneof=pending paid failed refunded"`
}

// Response DTOs

type PrescriptionResponse struct {
	ID             uuid.UUID           `json:"id"`
	AppointmentID  *uuid.UUID          `json:"appointment_id,omitempty"`
	MedicationID   uuid.UUID           `json:"medication_id"`
	Medication     *MedicationResponse `json:"medication,omitempty"`
	PrescribedByID *uuid.UUID          `json:"prescribed_by_id,omitempty"`
	Quantity       string              `json:"quantity"`
	Instructions   string              `json:"instructions,omitempty"`
	PrescribedDate string              `json:"prescribed_date"`
	PaymentMethod  *string             `json:"payment_method,omitempty"`
	PaymentAmount  *decimal.Decimal    `json:"payment_amount,omitempty"`
	PaymentStatus  string              `json:"payment_status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int64                  `json:"total"`
}
