package repository

import (
	"context"
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *entity.Prescription) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Prescription, error)
	FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.Prescription, error)
	// FindAll lists prescriptions, optionally narrowed to one payment status
	FindAll(ctx context.Context, paymentStatus entity.PaymentStatus, limit, offset int) ([]entity.Prescription, int64, error)
	UpdateBilling(ctx context.Context, prescription *entity.Prescription) error
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
