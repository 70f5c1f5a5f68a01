package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	Specialty       string `json:"specialty" validate:"required,max=100"`
	AppointmentDate string `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointment_time" validate:"required,oneof=morning afternoon"`
	VisitType       string `json:"visit_type" validate:"required,oneof=in-person virtual"`
	ReasonForVisit  string `json:"reason_for_visit" validate:"omitempty,max=2000"`
}

// AppointmentListQuery carries the query string of appointment listings
type AppointmentListQuery struct {
	Status     string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	DoctorName string `json:"doctor_name" validate:"omitempty,max=255"`
	DateFrom   string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// UpdateClinicalRecordRequest only touches the fields that are present
type UpdateClinicalRecordRequest struct {
	Diagnosis     *string  `json:"diagnosis" validate:"omitempty,max=1000"`
	Symptoms      *string  `json:"symptoms" validate:"omitempty,max=1000"`
	Notes         *string  `json:"notes" validate:"omitempty,max=2000"`
	BloodPressure *string  `json:"blood_pressure" validate:"omitempty,max=50"`
	Temperature   *float64 `json:"temperature" validate:"omitempty,gte=30,lte=45"`
	HeartRate     *int     `json:"heart_rate" validate:"omitempty,gte=40,lte=200"`
	Weight        *float64 `json:"weight" validate:"omitempty,gte=1,lte=300"`
	Height        *float64 `json:"height" validate:"omitempty,gte=50,lte=250"`
	LabResults    *string  `json:"lab_results" validate:"omitempty,max=2000"`
	Allergies     *string  `json:"allergies" validate:"omitempty,max=1000"`
}

type ProcessPaymentRequest struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card bank_transfer other"`
	PaymentAmount *decimal.Decimal `json:"payment_amount" validate:"required"`
	PaymentStatus string           `json:"payment_status" validate:"omitempty,oneof=pending paid failed refunded"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID    `json:"id"`
	PatientID       uuid.UUID    `json:"patient_id"`
	Patient         *UserSummary `json:"patient,omitempty"`
	DoctorID        uuid.UUID    `json:"doctor_id"`
	Doctor          *UserSummary `json:"doctor,omitempty"`
	Specialty       string       `json:"specialty"`
	ReasonForVisit  string       `json:"reason_for_visit,omitempty"`
	AppointmentDate string       `json:"appointment_date"`
	AppointmentTime string       `json:"appointment_time"`
	VisitType       string       `json:"visit_type"`
	Status          string       `json:"status"`

	Diagnosis     string   `json:"diagnosis,omitempty"`
	Symptoms      string   `json:"symptoms,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	BloodPressure string   `json:"blood_pressure,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	HeartRate     *int     `json:"heart_rate,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	LabResults    string   `json:"lab_results,omitempty"`
	Allergies     string   `json:"allergies,omitempty"`

	PaymentMethod *string          `json:"payment_method,omitempty"`
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentStatus *string          `json:"payment_status,omitempty"`

	Prescriptions []PrescriptionResponse `json:"prescriptions,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
	CancelledAt   *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}

type CashierDashboardResponse struct {
	ProcessedToday   int64           `json:"processed_today"`
	AwaitingPayment  int64           `json:"awaiting_payment"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
}
