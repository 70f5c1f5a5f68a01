package repository

import (
	"context"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type patientProfileRepository struct {
	db *gorm.DB
}

func NewPatientProfileRepository(db *gorm.DB) domainRepo.PatientProfileRepository {
	return &patientProfileRepository{db: db}
}

// Create inserts the profile. Profiles are read back through the user's preload.
func (r *patientProfileRepository) Create(ctx context.Context, profile *entity.PatientProfile) error {
	return conn(ctx, r.db).Create(profile).Error
}

func (r *patientProfileRepository) UpsertMatricNo(ctx context.Context, userID uuid.UUID, matricNo string) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"matric_no"}),
		}).
		Create(&entity.PatientProfile{UserID: userID, MatricNo: matricNo}).Error
}
