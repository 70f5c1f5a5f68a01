package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentSlot is the half-day slot an appointment occupies
type AppointmentSlot string

const (
	SlotMorning   AppointmentSlot = "morning"
	SlotAfternoon AppointmentSlot = "afternoon"
)

type VisitType string

const (
	VisitTypeInPerson VisitType = "in-person"
	VisitTypeVirtual  VisitType = "virtual"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Appointment is a booked visit of a patient with a doctor.
// Clinical fields are written by the assigned doctor, billing fields by a cashier.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Specialty       string            `gorm:"type:varchar(100);not null" json:"specialty"`
	ReasonForVisit  string            `gorm:"type:text" json:"reason_for_visit,omitempty"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime AppointmentSlot   `gorm:"type:varchar(20);not null" json:"appointment_time"`
	VisitType       VisitType         `gorm:"type:varchar(20);not null" json:"visit_type"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Clinical record
	Diagnosis     string   `gorm:"type:text" json:"diagnosis,omitempty"`
	Symptoms      string   `gorm:"type:text" json:"symptoms,omitempty"`
	Notes         string   `gorm:"type:text" json:"notes,omitempty"`
	BloodPressure string   `gorm:"type:varchar(50)" json:"blood_pressure,omitempty"`
	Temperature   *float64 `gorm:"type:numeric(4,1)" json:"temperature,omitempty"`
	HeartRate     *int     `json:"heart_rate,omitempty"`
	Weight        *float64 `gorm:"type:numeric(5,2)" json:"weight,omitempty"`
	Height        *float64 `gorm:"type:numeric(5,2)" json:"height,omitempty"`
	LabResults    string   `gorm:"type:text" json:"lab_results,omitempty"`
	Allergies     string   `gorm:"type:text" json:"allergies,omitempty"`

	// Billing
	PaymentMethod *PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentAmount *decimal.Decimal `gorm:"type:decimal(10,2)" json:"payment_amount,omitempty"`
	PaymentStatus *PaymentStatus   `gorm:"type:varchar(20)" json:"payment_status,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient       *User          `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor        *User          `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Prescriptions []Prescription `gorm:"foreignKey:AppointmentID" json:"prescriptions,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// appointmentTransitions lists every status reachable from a given status.
// Nothing ever moves back to pending.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted: {},
	AppointmentStatusCancelled: {},
}

// CanTransitionTo reports whether the appointment may move to the given status
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	for _, s := range appointmentTransitions[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsPending checks if appointment is in pending status
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsTerminal reports whether no further transition is possible
func (a *Appointment) IsTerminal() bool {
	return len(appointmentTransitions[a.Status]) == 0
}

// AcceptsClinicalUpdates reports whether the doctor may still annotate the record
func (a *Appointment) AcceptsClinicalUpdates() bool {
	return a.Status != AppointmentStatusCancelled
}

// Complete moves the appointment to completed. Callers check CanTransitionTo first.
func (a *Appointment) Complete(at time.Time) {
	a.Status = AppointmentStatusCompleted
	a.CompletedAt = &at
}

// Cancel moves the appointment to cancelled. Callers check CanTransitionTo first.
func (a *Appointment) Cancel(at time.Time) {
	a.Status = AppointmentStatusCancelled
	a.CancelledAt = &at
}

// IsValidAppointmentSlot checks the slot against the known half-day slots
func IsValidAppointmentSlot(slot string) bool {
	switch AppointmentSlot(slot) {
	case SlotMorning, SlotAfternoon:
		return true
	}
	return false
}
