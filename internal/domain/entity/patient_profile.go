package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile represents patient-specific profile data
type PatientProfile struct {
	UserID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	MatricNo         string     `gorm:"type:varchar(50);uniqueIndex:patient_profiles_matric_no_key,where:matric_no <> ''" json:"matric_no,omitempty"`
	Gender           string     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`
	EmergencyContact string     `gorm:"type:varchar(255)" json:"emergency_contact,omitempty"`
	BloodType        string     `gorm:"type:varchar(5)" json:"blood_type,omitempty"`
	Genotype         string     `gorm:"type:varchar(5)" json:"genotype,omitempty"`
	HeightCM         *float64   `gorm:"column:height_cm;type:numeric(5,2)" json:"height_cm,omitempty"`
	WeightKG         *float64   `gorm:"column:weight_kg;type:numeric(5,2)" json:"weight_kg,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
)
