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

var ErrPrescriptionNotFound = errors.New("prescription not found")

type PrescriptionUsecase interface {
	Create(ctx context.Context, appointmentID uuid.UUID, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]dto.PrescriptionResponse, error)
	GetAll(ctx context.Context, paymentStatus string, page, limit int) (*dto.PrescriptionListResponse, error)
	UpdateBilling(ctx context.Context, id uuid.UUID, req *dto.UpdatePrescriptionBillingRequest) (*dto.PrescriptionResponse, error)
}

type prescriptionUsecase struct {
	log              *logrus.Logger
	transactor       repository.Transactor
	prescriptionRepo repository.PrescriptionRepository
	appointmentRepo  repository.AppointmentRepository
	medicationRepo   repository.MedicationRepository
	auditService     service.AuditService
	gate             service.AccessGate
	validator        *validator.CustomValidator
	metrics          *metrics.Collector
	policy           BookingPolicy
}

func NewPrescriptionUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	medicationRepo repository.MedicationRepository,
	auditService service.AuditService,
	gate service.AccessGate,
	validator *validator.CustomValidator,
	collector *metrics.Collector,
	policy BookingPolicy,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		log:              log,
		transactor:       transactor,
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		medicationRepo:   medicationRepo,
		auditService:     auditService,
		gate:             gate,
		validator:        validator,
		metrics:          collector,
		policy:           policy,
	}
}

// Create issues a prescription on an appointment. Only the assigned doctor may prescribe.
func (u *prescriptionUsecase) Create(ctx context.Context, appointmentID uuid.UUID, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	actor, err := requireRoleWith(ctx, u.gate, entity.RoleDoctor, entity.PermissionGivePrescription)
	if err != nil {
		return nil, err
	}
	if fields := u.validator.ValidateFields(req); fields != nil {
		return nil, newValidationError(fields)
	}
	medicationID, _ := uuid.Parse(req.MedicationID)

	var prescription *entity.Prescription
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if appointment.DoctorID != actor.UserID {
			return ErrAppointmentNotAssigned
		}
		if appointment.Status == entity.AppointmentStatusCancelled {
			return ErrIllegalStateTransition
		}

		medication, err := u.medicationRepo.FindByID(ctx, medicationID)
		if err != nil {
			return err
		}
		if medication == nil {
			return newValidationError(map[string]string{"medication_id": "medication does not exist"})
		}

		prescribedBy := actor.UserID
		prescription = &entity.Prescription{
			AppointmentID:  &appointment.ID,
			MedicationID:   medication.ID,
			PrescribedByID: &prescribedBy,
			Quantity:       strings.TrimSpace(req.Quantity),
			Instructions:   strings.TrimSpace(req.Instructions),
			PrescribedDate: u.policy.today(),
			PaymentStatus:  entity.PaymentStatusPending,
		}
		if err := u.prescriptionRepo.Create(ctx, prescription); err != nil {
			return err
		}
		prescription.Medication = medication

		return u.auditService.LogCreate(ctx, entity.AuditActionPrescriptionCreate, "prescription", prescription.ID.String(), map[string]interface{}{
			"appointment_id": appointment.ID,
			"medication":     medication.Name,
			"quantity":       prescription.Quantity,
		})
	})
	if err != nil {
		if !isPrescriptionRuleError(err) {
			u.log.Warnf("Failed to create prescription for appointment %s: %+v", appointmentID, err)
		}
		return nil, err
	}

	u.metrics.ObservePrescription()
	return converter.PrescriptionToResponse(prescription), nil
}

// GetByAppointment lists an appointment's prescriptions for whoever may see the appointment
// itself, plus the pharmacy and cashier desks
func (u *prescriptionUsecase) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]dto.PrescriptionResponse, error) {
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !canViewAppointment(ctx, u.gate, actor, appointment, entity.PermissionViewPrescription, entity.PermissionAcceptPayment) {
		return nil, ErrForbidden
	}

	prescriptions, err := u.prescriptionRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	return converter.PrescriptionsToResponses(prescriptions), nil
}

func (u *prescriptionUsecase) GetAll(ctx context.Context, paymentStatus string, page, limit int) (*dto.PrescriptionListResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewPrescription); err != nil {
		return nil, err
	}

	page, limit = dto.NormalizePage(page, limit)
	prescriptions, total, err := u.prescriptionRepo.FindAll(ctx, entity.PaymentStatus(paymentStatus), limit, dto.Offset(page, limit))
	if err != nil {
		u.log.Warnf("Failed to find prescriptions: %+v", err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         total,
	}, nil
}

// UpdateBilling records how a prescription was paid for
func (u *prescriptionUsecase) UpdateBilling(ctx context.Context, id uuid.UUID, req *dto.UpdatePrescriptionBillingRequest) (*dto.PrescriptionResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionAcceptPayment); err != nil {
		return nil, err
	}

	verr := newValidationError(u.validator.ValidateFields(req))
	if req.PaymentAmount != nil && req.PaymentAmount.IsNegative() {
		verr.Add("payment_amount", "payment_amount must be 0 or greater")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var prescription *entity.Prescription
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		prescription, err = u.prescriptionRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if prescription == nil {
			return ErrPrescriptionNotFound
		}

		before := map[string]interface{}{"payment_status": prescription.PaymentStatus}
		method := entity.PaymentMethod(req.PaymentMethod)
		amount := req.PaymentAmount.Round(2)
		prescription.PaymentMethod = &method
		prescription.PaymentAmount = &amount
		prescription.PaymentStatus = entity.PaymentStatus(req.PaymentStatus)

		if err := u.prescriptionRepo.UpdateBilling(ctx, prescription); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, entity.AuditActionPrescriptionPayment, "prescription", id.String(), before, map[string]interface{}{
			"payment_method": method,
			"payment_amount": amount.StringFixed(2),
			"payment_status": prescription.PaymentStatus,
		})
	})
	if err != nil {
		if !errors.Is(err, ErrPrescriptionNotFound) {
			u.log.Warnf("Failed to update billing of prescription %s: %+v", id, err)
		}
		return nil, err
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func isPrescriptionRuleError(err error) bool {
	return isLifecycleRuleError(err)
}
