package entity

import (
	"time"

	"github.com/google/uuid"
)

// Specialization is a medical specialty a doctor can practice
type Specialization struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Specialization) TableName() string {
	return "specializations"
}

// StaffSpecialization links a staff user to a specialization
type StaffSpecialization struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	SpecializationID int       `gorm:"primaryKey" json:"specialization_id"`
}

func (StaffSpecialization) TableName() string {
	return "staff_specializations"
}

// DefaultSpecializations is seeded into a fresh database
var DefaultSpecializations = []Specialization{
	{Name: "Cardiology", Description: "Deals with disorders of the heart and blood vessels"},
	{Name: "Dermatology", Description: "Focuses on conditions affecting the skin, hair, and nails"},
	{Name: "Neurology", Description: "Treats disorders of the nervous system"},
	{Name: "Pediatrics", Description: "Provides medical care for infants, children, and adolescents"},
	{Name: "Orthopedics", Description: "Focuses on conditions affecting the musculoskeletal system"},
	{Name: "Psychiatry", Description: "Deals with mental, emotional, and behavioral disorders"},
	{Name: "Ophthalmology", Description: "Specializes in eye and vision care"},
	{Name: "ENT", Description: "Treats ear, nose, and throat conditions"},
}
