package repository

import (
	"context"
	"errors"
	"time"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).
		Preload("Roles").
		Preload("Specializations").
		Preload("PatientProfile").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDWithRole(ctx context.Context, id uuid.UUID, role string) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).
		Select("users.*").
		Preload("Specializations").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("users.id = ? AND roles.name = ?", id, role).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByRole(ctx context.Context, role string, specialization string) ([]entity.User, error) {
	var users []entity.User
	q := conn(ctx, r.db).
		Select("users.*").
		Preload("Specializations").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role)
	if specialization != "" {
		q = q.Joins("JOIN staff_specializations ON staff_specializations.user_id = users.id").
			Joins("JOIN specializations ON specializations.id = staff_specializations.specialization_id").
			Where("specializations.name = ?", specialization)
	}
	if err := q.Order("users.full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) LockByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var user entity.User
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *userRepository) FindPatients(ctx context.Context, filter entity.PatientFilter) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&entity.User{}).
			Joins("JOIN user_roles ON user_roles.user_id = users.id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Joins("LEFT JOIN patient_profiles ON patient_profiles.user_id = users.id").
			Where("roles.name = ?", entity.RolePatient)
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("users.full_name ILIKE ? OR users.email ILIKE ? OR patient_profiles.matric_no ILIKE ?", like, like, like)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().
		Select("users.*").
		Preload("Roles").
		Preload("PatientProfile").
		Order("users.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) CountRegistrationsSince(ctx context.Context, role string, since time.Time) ([]entity.DailyCount, error) {
	var counts []entity.DailyCount
	err := conn(ctx, r.db).Model(&entity.User{}).
		Select("TO_CHAR(DATE(users.created_at), 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ? AND users.created_at >= ?", role, since).
		Group("day").
		Order("day ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return conn(ctx, r.db).Model(user).
		Select("full_name", "email", "updated_at").
		Updates(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&entity.User{}).Error
}
