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

type medicationRepository struct {
	db *gorm.DB
}

func NewMedicationRepository(db *gorm.DB) domainRepo.MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, medication *entity.Medication) error {
	return conn(ctx, r.db).Create(medication).Error
}

func (r *medicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error) {
	return r.findByID(conn(ctx, r.db), id)
}

func (r *medicationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Medication, error) {
	return r.findByID(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *medicationRepository) findByID(db *gorm.DB, id uuid.UUID) (*entity.Medication, error) {
	var medication entity.Medication
	err := db.Where("id = ?", id).First(&medication).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &medication, nil
}

func (r *medicationRepository) FindAll(ctx context.Context, filter entity.MedicationFilter) ([]entity.Medication, int64, error) {
	var medications []entity.Medication
	var total int64

	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&entity.Medication{})
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("name ILIKE ? OR supplier ILIKE ?", like, like)
		}
		if filter.ExpiryFrom != "" {
			q = q.Where("expiry >= ?", filter.ExpiryFrom)
		}
		if filter.ExpiryTo != "" {
			q = q.Where("expiry <= ?", filter.ExpiryTo)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&medications).Error; err != nil {
		return nil, 0, err
	}

	return medications, total, nil
}

func (r *medicationRepository) FindLatest(ctx context.Context, limit int) ([]entity.Medication, error) {
	var medications []entity.Medication
	if err := conn(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *entity.Medication) error {
	return conn(ctx, r.db).Save(medication).Error
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Medication{}).Error
}

func (r *medicationRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Medication{}).
		Where("stock_level < ?", threshold).
		Count(&count).Error
	return count, err
}

func (r *medicationRepository) CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Medication{}).
		Where("expiry >= ? AND expiry <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Count(&count).Error
	return count, err
}

func (r *medicationRepository) SumStock(ctx context.Context) (int64, error) {
	var sum int64
	err := conn(ctx, r.db).Model(&entity.Medication{}).
		Select("COALESCE(SUM(stock_level), 0)").
		Scan(&sum).Error
	return sum, err
}
