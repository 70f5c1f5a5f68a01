package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-management/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSeedUserNotFound = errors.New("user not found")

type Seeder struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewSeeder(db *gorm.DB, log *logrus.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// Seed inserts the built-in permissions, roles and specializations.
// Existing rows are left alone so it can run on every deploy.
func (s *Seeder) Seed(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		permissions := make([]entity.Permission, 0, len(entity.AllPermissions))
		for _, name := range entity.AllPermissions {
			permissions = append(permissions, entity.Permission{Name: name})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&permissions).Error; err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}

		for name, granted := range entity.DefaultRolePermissions {
			role := entity.Role{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
			if len(granted) == 0 {
				continue
			}

			var perms []entity.Permission
			if err := tx.Where("name IN ?", granted).Find(&perms).Error; err != nil {
				return fmt.Errorf("load permissions for %s: %w", name, err)
			}
			rows := make([]map[string]interface{}, 0, len(perms))
			for _, p := range perms {
				rows = append(rows, map[string]interface{}{"role_id": role.ID, "permission_id": p.ID})
			}
			if err := tx.Table("role_permissions").Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
				return fmt.Errorf("grant permissions to %s: %w", name, err)
			}
		}

		specializations := append([]entity.Specialization(nil), entity.DefaultSpecializations...)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&specializations).Error; err != nil {
			return fmt.Errorf("seed specializations: %w", err)
		}

		s.log.Infof("Seeded %d permissions, %d roles, %d specializations",
			len(permissions), len(entity.DefaultRolePermissions), len(specializations))
		return nil
	})
}

// MakeSuperAdmin grants the super-admin role to an existing user
func (s *Seeder) MakeSuperAdmin(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrSeedUserNotFound, email)
			}
			return err
		}

		var role entity.Role
		if err := tx.Where("name = ?", entity.RoleSuperAdmin).First(&role).Error; err != nil {
			return fmt.Errorf("load super-admin role, run seed first: %w", err)
		}

		row := map[string]interface{}{"user_id": user.ID, "role_id": role.ID}
		if err := tx.Table("user_roles").Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return fmt.Errorf("assign super-admin: %w", err)
		}

		s.log.Infof("User %s is now a super-admin", user.ID)
		return nil
	})
}
