package repository

import (
	"context"
	"errors"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) domainRepo.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *entity.Role) error {
	return conn(ctx, r.db).Omit("Permissions").Create(role).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id int) (*entity.Role, error) {
	var role entity.Role
	err := conn(ctx, r.db).Preload("Permissions").Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	err := conn(ctx, r.db).Preload("Permissions").Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll(ctx context.Context) ([]entity.Role, error) {
	var roles []entity.Role
	if err := conn(ctx, r.db).Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Update(ctx context.Context, role *entity.Role) error {
	return conn(ctx, r.db).Model(role).Select("name", "description").Updates(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, id int) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Role{}).Error
}

func (r *roleRepository) SyncPermissions(ctx context.Context, roleID int, permissionNames []string) error {
	db := conn(ctx, r.db)
	role := entity.Role{ID: roleID}

	if len(permissionNames) == 0 {
		return db.Model(&role).Association("Permissions").Clear()
	}

	var permissions []entity.Permission
	if err := db.Where("name IN ?", permissionNames).Find(&permissions).Error; err != nil {
		return err
	}
	return db.Model(&role).Association("Permissions").Replace(permissions)
}

func (r *roleRepository) AssignToUser(ctx context.Context, userID uuid.UUID, roleID int) error {
	return conn(ctx, r.db).
		Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING", userID, roleID).
		Error
}

func (r *roleRepository) ReplaceUserRoles(ctx context.Context, userID uuid.UUID, roleID int) error {
	db := conn(ctx, r.db)
	if err := db.Exec("DELETE FROM user_roles WHERE user_id = ? AND role_id <> ?", userID, roleID).Error; err != nil {
		return err
	}
	return db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING", userID, roleID).Error
}

func (r *roleRepository) FindAllPermissions(ctx context.Context) ([]entity.Permission, error) {
	var permissions []entity.Permission
	if err := conn(ctx, r.db).Order("name ASC").Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *roleRepository) FindRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := conn(ctx, r.db).Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	return names, err
}

func (r *roleRepository) FindPermissionNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := conn(ctx, r.db).Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Distinct().
		Pluck("permissions.name", &names).Error
	return names, err
}
