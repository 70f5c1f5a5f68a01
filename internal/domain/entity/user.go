package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents the centralized authentication table shared by patients and staff
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Roles           []Role           `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	Specializations []Specialization `gorm:"many2many:staff_specializations;" json:"specializations,omitempty"`
	PatientProfile  *PatientProfile  `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames returns the names of the loaded roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole checks the loaded roles for the given role name
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasSpecialization checks the loaded specializations by name
func (u *User) HasSpecialization(name string) bool {
	for _, s := range u.Specializations {
		if s.Name == name {
			return true
		}
	}
	return false
}
