package repository

import (
	"context"
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(ctx context.Context, patientID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	// FindAwaitingPayment lists pending appointments that have no payment recorded
	FindAwaitingPayment(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)

	CountByPatientAndStatus(ctx context.Context, patientID uuid.UUID, status entity.AppointmentStatus) (int64, error)
	CountByStatus(ctx context.Context, status entity.AppointmentStatus) (int64, error)
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error)
	// ExistsActiveForSlot reports whether a non-cancelled appointment holds the slot
	ExistsActiveForSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.AppointmentSlot) (bool, error)

	// UpdateClinical skips cancelled rows and returns rows affected
	UpdateClinical(ctx context.Context, appointment *entity.Appointment) (int64, error)
	// The conditional writes below only touch pending rows and return rows affected
	CompleteWithPayment(ctx context.Context, appointment *entity.Appointment) (int64, error)
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	DeleteIfPending(ctx context.Context, id uuid.UUID) (int64, error)

	SumPaymentsBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
