package entity

import "time"

// Role represents a named group of permissions
type Role struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is a single named capability, e.g. "accept.payment"
type Permission struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Role names
const (
	RoleSuperAdmin = "super-admin"
	RolePatient    = "patient"
	RoleDoctor     = "doctor"
	RoleCashier    = "cashier"
	RolePharmacist = "pharmacist"
)

// Permission names
const (
	PermissionViewRoles         = "view.roles"
	PermissionCreateRoles       = "create.roles"
	PermissionEditRoles         = "edit.roles"
	PermissionDeleteRoles       = "delete.roles"
	PermissionAssignPermissions = "assign.permissions"

	PermissionViewPatients   = "view.patients"
	PermissionCreatePatients = "create.patients"
	PermissionEditPatients   = "edit.patients"
	PermissionDeletePatients = "delete.patients"

	PermissionViewMedicalRecords   = "view.medical.records"
	PermissionCreateMedicalRecords = "create.medical.records"
	PermissionEditMedicalRecords   = "edit.medical.records"
	PermissionDeleteMedicalRecords = "delete.medical.records"

	PermissionViewStaff   = "view.staff"
	PermissionCreateStaff = "create.staff"
	PermissionEditStaff   = "edit.staff"
	PermissionDeleteStaff = "delete.staff"

	PermissionViewSpecializations   = "view.specializations"
	PermissionCreateSpecializations = "create.specializations"
	PermissionEditSpecializations   = "edit.specializations"
	PermissionDeleteSpecializations = "delete.specializations"

	PermissionViewAppointments = "view.appointments"

	PermissionViewMeds   = "view.meds"
	PermissionCreateMeds = "create.meds"
	PermissionEditMeds   = "edit.meds"
	PermissionDeleteMeds = "delete.meds"

	PermissionViewPrescription = "view.prescription"
	PermissionGivePrescription = "give.prescription"

	PermissionAcceptPayment = "accept.payment"
)

// AllPermissions is the permission catalog seeded into a fresh database
var AllPermissions = []string{
	PermissionViewRoles, PermissionCreateRoles, PermissionEditRoles, PermissionDeleteRoles, PermissionAssignPermissions,
	PermissionViewPatients, PermissionCreatePatients, PermissionEditPatients, PermissionDeletePatients,
	PermissionViewMedicalRecords, PermissionCreateMedicalRecords, PermissionEditMedicalRecords, PermissionDeleteMedicalRecords,
	PermissionViewStaff, PermissionCreateStaff, PermissionEditStaff, PermissionDeleteStaff,
	PermissionViewSpecializations, PermissionCreateSpecializations, PermissionEditSpecializations, PermissionDeleteSpecializations,
	PermissionViewAppointments,
	PermissionViewMeds, PermissionCreateMeds, PermissionEditMeds, PermissionDeleteMeds,
	PermissionViewPrescription, PermissionGivePrescription,
	PermissionAcceptPayment,
}

// DefaultRolePermissions is the initial permission set of each built-in role.
// super-admin is granted everything by the gate and needs no rows.
var DefaultRolePermissions = map[string][]string{
	RoleSuperAdmin: {},
	RolePatient:    {PermissionViewAppointments, PermissionViewSpecializations},
	RoleDoctor: {
		PermissionViewAppointments, PermissionViewPatients, PermissionViewSpecializations,
		PermissionViewMedicalRecords, PermissionCreateMedicalRecords, PermissionEditMedicalRecords,
		PermissionGivePrescription, PermissionViewMeds,
	},
	RoleCashier: {
		PermissionViewAppointments, PermissionViewPatients, PermissionViewPrescription, PermissionAcceptPayment,
	},
	RolePharmacist: {
		PermissionViewMeds, PermissionCreateMeds, PermissionEditMeds, PermissionDeleteMeds,
		PermissionViewPrescription, PermissionGivePrescription,
	},
}
