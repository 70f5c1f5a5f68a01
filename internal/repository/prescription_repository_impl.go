package repository

import (
	"context"
	"errors"
	"time"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type prescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) domainRepo.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *entity.Prescription) error {
	return conn(ctx, r.db).Omit("Appointment", "Medication").Create(prescription).Error
}

func (r *prescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := conn(ctx, r.db).
		Preload("Medication").
		Preload("Appointment.Patient").
		Where("id = ?", id).
		First(&prescription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.Prescription, error) {
	var prescriptions []entity.Prescription
	err := conn(ctx, r.db).
		Preload("Medication").
		Where("appointment_id = ?", appointmentID).
		Order("prescribed_date DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) FindAll(ctx context.Context, paymentStatus entity.PaymentStatus, limit, offset int) ([]entity.Prescription, int64, error) {
	var prescriptions []entity.Prescription
	var total int64

	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&entity.Prescription{})
		if paymentStatus != "" {
			q = q.Where("payment_status = ?", paymentStatus)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().
		Preload("Medication").
		Preload("Appointment.Patient").
		Order("prescribed_date DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&prescriptions).Error; err != nil {
		return nil, 0, err
	}

	return prescriptions, total, nil
}

func (r *prescriptionRepository) UpdateBilling(ctx context.Context, prescription *entity.Prescription) error {
	return conn(ctx, r.db).Model(&entity.Prescription{}).
		Where("id = ?", prescription.ID).
		Select("payment_method", "payment_amount", "payment_status").
		Updates(prescription).Error
}

func (r *prescriptionRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := conn(ctx, r.db).Model(&entity.Prescription{}).
		Select("COALESCE(SUM(payment_amount), 0)").
		Where("payment_status = ? AND updated_at >= ? AND updated_at < ?", entity.PaymentStatusPaid, from, to).
		Scan(&sum).Error
	return sum, err
}
