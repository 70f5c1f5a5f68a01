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

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return conn(ctx, r.db).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := conn(ctx, r.db).
		Preload("Patient").
		Preload("Doctor").
		Preload("Prescriptions.Medication").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, patientID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("appointments.patient_id = ?", patientID)
	})
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("appointments.doctor_id = ?", doctorID)
	})
}

func (r *appointmentRepository) FindAwaitingPayment(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	filter.Status = entity.AppointmentStatusPending
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("appointments.payment_method IS NULL")
	})
}

// list runs the count and page queries with the same filter applied
func (r *appointmentRepository) list(ctx context.Context, filter entity.AppointmentFilter, scope func(*gorm.DB) *gorm.DB) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&entity.Appointment{})
		q = scope(q)
		if filter.Status != "" {
			q = q.Where("appointments.status = ?", filter.Status)
		}
		if filter.DoctorName != "" {
			q = q.Joins("JOIN users doctors ON doctors.id = appointments.doctor_id").
				Where("doctors.full_name ILIKE ?", "%"+filter.DoctorName+"%")
		}
		if filter.DateFrom != "" {
			q = q.Where("appointments.appointment_date >= ?", filter.DateFrom)
		}
		if filter.DateTo != "" {
			q = q.Where("appointments.appointment_date <= ?", filter.DateTo)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().
		Preload("Patient").
		Preload("Doctor").
		Order("appointments.appointment_date DESC").
		Order("appointments.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (r *appointmentRepository) CountByPatientAndStatus(ctx context.Context, patientID uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("patient_id = ? AND status = ?", patientID, status).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, status entity.AppointmentStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", entity.AppointmentStatusCompleted, from, to).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) ExistsActiveForSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.AppointmentSlot) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
			doctorID, date.Format("2006-01-02"), slot, entity.AppointmentStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

var clinicalColumns = []string{
	"diagnosis", "symptoms", "notes", "blood_pressure", "temperature",
	"heart_rate", "weight", "height", "lab_results", "allergies",
}

func (r *appointmentRepository) UpdateClinical(ctx context.Context, appointment *entity.Appointment) (int64, error) {
	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status <> ?", appointment.ID, entity.AppointmentStatusCancelled).
		Select(clinicalColumns).
		Updates(appointment)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) CompleteWithPayment(ctx context.Context, appointment *entity.Appointment) (int64, error) {
	updates := map[string]interface{}{
		"status":       entity.AppointmentStatusCompleted,
		"completed_at": appointment.CompletedAt,
	}
	if appointment.PaymentMethod != nil {
		updates["payment_method"] = string(*appointment.PaymentMethod)
	}
	if appointment.PaymentAmount != nil {
		updates["payment_amount"] = *appointment.PaymentAmount
	}
	if appointment.PaymentStatus != nil {
		updates["payment_status"] = string(*appointment.PaymentStatus)
	}

	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", appointment.ID, entity.AppointmentStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Updates(map[string]interface{}{
			"status":       entity.AppointmentStatusCancelled,
			"cancelled_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteIfPending(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) SumPaymentsBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := conn(ctx, r.db).Model(&entity.Appointment{}).
		Select("COALESCE(SUM(payment_amount), 0)").
		Where("status = ? AND payment_method IS NOT NULL AND completed_at >= ? AND completed_at < ?",
			entity.AppointmentStatusCompleted, from, to).
		Scan(&sum).Error
	return sum, err
}
