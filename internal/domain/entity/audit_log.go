package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON maps a jsonb column
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb value of type %T", value)
	}

	result := map[string]interface{}{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Audit actions
const (
	AuditActionUserRegister         = "user.register"
	AuditActionAppointmentCreate    = "appointment.create"
	AuditActionAppointmentCancel    = "appointment.cancel"
	AuditActionAppointmentDelete    = "appointment.delete"
	AuditActionAppointmentClinical  = "appointment.clinical_update"
	AuditActionAppointmentPayment   = "appointment.payment"
	AuditActionPrescriptionCreate   = "prescription.create"
	AuditActionPrescriptionPayment  = "prescription.payment"
	AuditActionMedicationCreate     = "medication.create"
	AuditActionMedicationUpdate     = "medication.update"
	AuditActionMedicationRestock    = "medication.restock"
	AuditActionMedicationDelete     = "medication.delete"
	AuditActionRoleCreate           = "role.create"
	AuditActionRoleUpdate           = "role.update"
	AuditActionRoleDelete           = "role.delete"
	AuditActionRoleAssign           = "role.assign"
	AuditActionStaffCreate          = "staff.create"
	AuditActionStaffDelete          = "staff.delete"
	AuditActionPatientUpdate        = "patient.update"
	AuditActionPatientDelete        = "patient.delete"
	AuditActionSpecializationCreate = "specialization.create"
	AuditActionSpecializationUpdate = "specialization.update"
	AuditActionSpecializationDelete = "specialization.delete"
)
