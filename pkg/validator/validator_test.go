package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	DoctorID string   `json:"doctor_id" validate:"required,uuid"`
	Slot     string   `json:"appointment_time" validate:"required,oneof=morning afternoon"`
	Date     string   `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	Reason   string   `json:"reason_for_visit" validate:"max=5"`
	Heart    *int     `json:"heart_rate" validate:"omitempty,gte=40,lte=200"`
	Weight   *float64 `json:"weight" validate:"omitempty,min=1,max=300"`
}

func TestValidateFields_ReportsEveryFailingFieldByJSONName(t *testing.T) {
	v := NewValidator()
	heart := 20
	weight := 500.0

	errs := v.ValidateFields(&sampleRequest{
		DoctorID: "not-a-uuid",
		Slot:     "evening",
		Date:     "10/01/2025",
		Reason:   "too long reason",
		Heart:    &heart,
		Weight:   &weight,
	})

	assert.Equal(t, map[string]string{
		"doctor_id":        "doctor_id must be a valid UUID",
		"appointment_time": "appointment_time must be one of: morning, afternoon",
		"appointment_date": "appointment_date must be a date in YYYY-MM-DD format",
		"reason_for_visit": "reason_for_visit must be at most 5 characters",
		"heart_rate":       "heart_rate must be greater than or equal to 40",
		"weight":           "weight must be at most 300",
	}, errs)
}

func TestValidateFields_Valid(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateFields(&sampleRequest{
		DoctorID: "8f14e45f-ceea-467f-a9a4-6e5c8b8f0a11",
		Slot:     "morning",
		Date:     "2030-01-10",
	})

	assert.Nil(t, errs)
}

func TestValidateFields_RequiredFields(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateFields(&sampleRequest{})

	assert.Equal(t, "doctor_id is required", errs["doctor_id"])
	assert.Equal(t, "appointment_time is required", errs["appointment_time"])
	assert.Equal(t, "appointment_date is required", errs["appointment_date"])
	assert.NotContains(t, errs, "heart_rate")
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	v := NewValidator()

	errs := v.FormatValidationErrors(errors.New("boom"))

	assert.Equal(t, map[string]string{"request": "boom"}, errs)
}
