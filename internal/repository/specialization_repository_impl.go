package repository

import (
	"context"
	"errors"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type specializationRepository struct {
	db *gorm.DB
}

func NewSpecializationRepository(db *gorm.DB) domainRepo.SpecializationRepository {
	return &specializationRepository{db: db}
}

func (r *specializationRepository) Create(ctx context.Context, specialization *entity.Specialization) error {
	return conn(ctx, r.db).Create(specialization).Error
}

func (r *specializationRepository) FindByID(ctx context.Context, id int) (*entity.Specialization, error) {
	var specialization entity.Specialization
	err := conn(ctx, r.db).Where("id = ?", id).First(&specialization).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &specialization, nil
}

func (r *specializationRepository) FindByName(ctx context.Context, name string) (*entity.Specialization, error) {
	var specialization entity.Specialization
	err := conn(ctx, r.db).Where("name = ?", name).First(&specialization).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &specialization, nil
}

func (r *specializationRepository) FindAll(ctx context.Context) ([]entity.Specialization, error) {
	var specializations []entity.Specialization
	if err := conn(ctx, r.db).Order("name ASC").Find(&specializations).Error; err != nil {
		return nil, err
	}
	return specializations, nil
}

func (r *specializationRepository) Update(ctx context.Context, specialization *entity.Specialization) error {
	return conn(ctx, r.db).Save(specialization).Error
}

func (r *specializationRepository) Delete(ctx context.Context, id int) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Specialization{}).Error
}

func (r *specializationRepository) IsAssignedToStaff(ctx context.Context, userID uuid.UUID, specializationID int) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.StaffSpecialization{}).
		Where("user_id = ? AND specialization_id = ?", userID, specializationID).
		Count(&count).Error
	return count > 0, err
}

func (r *specializationRepository) SyncStaffSpecializations(ctx context.Context, userID uuid.UUID, specializationIDs []int) error {
	db := conn(ctx, r.db)
	if err := db.Where("user_id = ?", userID).Delete(&entity.StaffSpecialization{}).Error; err != nil {
		return err
	}
	if len(specializationIDs) == 0 {
		return nil
	}

	links := make([]entity.StaffSpecialization, 0, len(specializationIDs))
	for _, id := range specializationIDs {
		links = append(links, entity.StaffSpecialization{UserID: userID, SpecializationID: id})
	}
	return db.Create(&links).Error
}
