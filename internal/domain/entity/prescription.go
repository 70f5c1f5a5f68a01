package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prescription is a medication issued against an appointment
type Prescription struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID  *uuid.UUID       `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	MedicationID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"medication_id"`
	PrescribedByID *uuid.UUID       `gorm:"type:uuid" json:"prescribed_by_id,omitempty"`
	Quantity       string           `gorm:"type:varchar(100);not null" json:"quantity"`
	Instructions   string           `gorm:"type:text" json:"instructions,omitempty"`
	PrescribedDate time.Time        `gorm:"type:date;not null" json:"prescribed_date"`
	PaymentMethod  *PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentAmount  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"payment_amount,omitempty"`
	PaymentStatus  PaymentStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Medication  *Medication  `gorm:"foreignKey:MedicationID" json:"medication,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
