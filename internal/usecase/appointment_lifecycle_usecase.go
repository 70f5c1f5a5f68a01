package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/infrastructure/metrics"
	"clinic-management/internal/service"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrAppointmentNotAssigned = errors.New("appointment is not assigned to you")

// AppointmentLifecycleUsecase covers the doctor and cashier side of an appointment
type AppointmentLifecycleUsecase interface {
	GetDoctorAppointments(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	UpdateClinicalRecord(ctx context.Context, id uuid.UUID, req *dto.UpdateClinicalRecordRequest) (*dto.AppointmentResponse, error)
	GetAwaitingPayment(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	ProcessPayment(ctx context.Context, id uuid.UUID, req *dto.ProcessPaymentRequest) (*dto.AppointmentResponse, error)
}

type appointmentLifecycleUsecase struct {
	log             *logrus.Logger
	transactor      repository.Transactor
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	gate            service.AccessGate
	validator       *validator.CustomValidator
	metrics         *metrics.Collector
	policy          BookingPolicy
}

func NewAppointmentLifecycleUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	gate service.AccessGate,
	validator *validator.CustomValidator,
	collector *metrics.Collector,
	policy BookingPolicy,
) AppointmentLifecycleUsecase {
	return &appointmentLifecycleUsecase{
		log:             log,
		transactor:      transactor,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		gate:            gate,
		validator:       validator,
		metrics:         collector,
		policy:          policy,
	}
}

// GetDoctorAppointments lists appointments assigned to the logged-in doctor
func (u *appointmentLifecycleUsecase) GetDoctorAppointments(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	actor, err := requireRoleWith(ctx, u.gate, entity.RoleDoctor, entity.PermissionViewAppointments)
	if err != nil {
		return nil, err
	}

	filter, err := appointmentFilter(u.validator, query)
	if err != nil {
		return nil, err
	}

	appointments, total, err := u.appointmentRepo.FindByDoctorID(ctx, actor.UserID, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// UpdateClinicalRecord writes diagnosis and vitals. Only the assigned doctor may
// annotate, and never a cancelled appointment.
func (u *appointmentLifecycleUsecase) UpdateClinicalRecord(ctx context.Context, id uuid.UUID, req *dto.UpdateClinicalRecordRequest) (*dto.AppointmentResponse, error) {
	actor, err := requireRoleWith(ctx, u.gate, entity.RoleDoctor, entity.PermissionEditMedicalRecords)
	if err != nil {
		return nil, err
	}

	var updated *entity.Appointment
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if appointment.DoctorID != actor.UserID {
			return ErrAppointmentNotAssigned
		}
		if !appointment.AcceptsClinicalUpdates() {
			return ErrIllegalStateTransition
		}
		if fields := u.validator.ValidateFields(req); fields != nil {
			return newValidationError(fields)
		}

		before := clinicalSnapshot(appointment)
		applyClinicalRecord(appointment, req)

		affected, err := u.appointmentRepo.UpdateClinical(ctx, appointment)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrIllegalStateTransition
		}
		updated = appointment

		return u.auditService.LogUpdate(ctx, entity.AuditActionAppointmentClinical, "appointment", id.String(), before, clinicalSnapshot(appointment))
	})
	if err != nil {
		if !isLifecycleRuleError(err) {
			u.log.Warnf("Failed to update clinical record of appointment %s: %+v", id, err)
		}
		return nil, err
	}

	u.log.Infof("Clinical record updated: appointment=%s, doctor=%s", id, actor.UserID)
	return converter.AppointmentToResponse(updated), nil
}

func applyClinicalRecord(a *entity.Appointment, req *dto.UpdateClinicalRecordRequest) {
	setText := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setText(&a.Diagnosis, req.Diagnosis)
	setText(&a.Symptoms, req.Symptoms)
	setText(&a.Notes, req.Notes)
	setText(&a.BloodPressure, req.BloodPressure)
	setText(&a.LabResults, req.LabResults)
	setText(&a.Allergies, req.Allergies)

	if req.Temperature != nil {
		a.Temperature = req.Temperature
	}
	if req.HeartRate != nil {
		a.HeartRate = req.HeartRate
	}
	if req.Weight != nil {
		a.Weight = req.Weight
	}
	if req.Height != nil {
		a.Height = req.Height
	}
}

func clinicalSnapshot(a *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"diagnosis":      a.Diagnosis,
		"symptoms":       a.Symptoms,
		"notes":          a.Notes,
		"blood_pressure": a.BloodPressure,
		"temperature":    a.Temperature,
		"heart_rate":     a.HeartRate,
		"weight":         a.Weight,
		"height":         a.Height,
		"lab_results":    a.LabResults,
		"allergies":      a.Allergies,
	}
}

// GetAwaitingPayment is the cashier queue of pending appointments without payment
func (u *appointmentLifecycleUsecase) GetAwaitingPayment(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionAcceptPayment); err != nil {
		return nil, err
	}

	filter, err := appointmentFilter(u.validator, query)
	if err != nil {
		return nil, err
	}

	appointments, total, err := u.appointmentRepo.FindAwaitingPayment(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments awaiting payment: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// ProcessPayment records billing on a pending appointment and completes it.
// Payment status defaults to paid.
func (u *appointmentLifecycleUsecase) ProcessPayment(ctx context.Context, id uuid.UUID, req *dto.ProcessPaymentRequest) (*dto.AppointmentResponse, error) {
	actor, err := requirePermission(ctx, u.gate, entity.PermissionAcceptPayment)
	if err != nil {
		return nil, err
	}

	var completed *entity.Appointment
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if !appointment.CanTransitionTo(entity.AppointmentStatusCompleted) {
			return ErrIllegalStateTransition
		}

		verr := newValidationError(u.validator.ValidateFields(req))
		if req.PaymentAmount != nil && req.PaymentAmount.IsNegative() {
			verr.Add("payment_amount", "payment_amount must be 0 or greater")
		}
		if err := verr.Err(); err != nil {
			return err
		}

		method := entity.PaymentMethod(req.PaymentMethod)
		status := entity.PaymentStatusPaid
		if req.PaymentStatus != "" {
			status = entity.PaymentStatus(req.PaymentStatus)
		}
		amount := req.PaymentAmount.Round(2)

		appointment.PaymentMethod = &method
		appointment.PaymentAmount = &amount
		appointment.PaymentStatus = &status
		appointment.Complete(u.policy.now())

		affected, err := u.appointmentRepo.CompleteWithPayment(ctx, appointment)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrIllegalStateTransition
		}
		completed = appointment

		return u.auditService.LogUpdate(ctx, entity.AuditActionAppointmentPayment, "appointment", id.String(),
			map[string]interface{}{"status": entity.AppointmentStatusPending},
			map[string]interface{}{
				"status":         appointment.Status,
				"payment_method": method,
				"payment_amount": amount.StringFixed(2),
				"payment_status": status,
			},
		)
	})
	if err != nil {
		if !isLifecycleRuleError(err) {
			u.log.Warnf("Failed to process payment for appointment %s: %+v", id, err)
		}
		return nil, err
	}

	u.metrics.ObserveAppointment(string(entity.AppointmentStatusCompleted))
	u.log.Infof("Payment processed: appointment=%s, cashier=%s, amount=%s", id, actor.UserID, completed.PaymentAmount.StringFixed(2))
	return converter.AppointmentToResponse(completed), nil
}

func isLifecycleRuleError(err error) bool {
	return isAppointmentRuleError(err) || errors.Is(err, ErrAppointmentNotAssigned)
}
