package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

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

var (
	ErrAppointmentNotFound        = errors.New("appointment not found")
	ErrAppointmentNotOwned        = errors.New("appointment does not belong to you")
	ErrTooManyPendingAppointments = errors.New("you already have the maximum number of pending appointments")
	ErrDoctorSpecialtyMismatch    = errors.New("the selected doctor does not practice the selected specialty")
	ErrSlotUnavailable            = errors.New("the selected doctor is not available at that date and time")
	ErrBookingConflict            = errors.New("that slot was just taken, please try again")
	ErrIllegalStateTransition     = errors.New("the appointment can no longer be changed this way")
)

// slotConstraint is the partial unique index over active (doctor, date, slot) rows
const slotConstraint = "uq_appointments_doctor_slot"

const dateLayout = "2006-01-02"

// BookingPolicy holds the configurable booking rules
type BookingPolicy struct {
	MaxPendingPerPatient int
	Location             *time.Location
	Now                  func() time.Time
}

func (p BookingPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now().In(p.location())
	}
	return time.Now().In(p.location())
}

func (p BookingPolicy) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.UTC
}

// today is midnight of the current day in the policy location
func (p BookingPolicy) today() time.Time {
	now := p.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	CancelAppointment(ctx context.Context, id uuid.UUID) error
}

type appointmentUsecase struct {
	log                *logrus.Logger
	transactor         repository.Transactor
	appointmentRepo    repository.AppointmentRepository
	userRepo           repository.UserRepository
	specializationRepo repository.SpecializationRepository
	auditService       service.AuditService
	notifier           service.NotificationDispatcher
	gate               service.AccessGate
	validator          *validator.CustomValidator
	metrics            *metrics.Collector
	policy             BookingPolicy
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	specializationRepo repository.SpecializationRepository,
	auditService service.AuditService,
	notifier service.NotificationDispatcher,
	gate service.AccessGate,
	validator *validator.CustomValidator,
	collector *metrics.Collector,
	policy BookingPolicy,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:                log,
		transactor:         transactor,
		appointmentRepo:    appointmentRepo,
		userRepo:           userRepo,
		specializationRepo: specializationRepo,
		auditService:       auditService,
		notifier:           notifier,
		gate:               gate,
		validator:          validator,
		metrics:            collector,
		policy:             policy,
	}
}

// validatedBooking is a booking request whose store lookups all succeeded
type validatedBooking struct {
	doctor         *entity.User
	specialization *entity.Specialization
	date           time.Time
}

// BookAppointment validates a booking request and creates a pending appointment.
//
// All checks run in one transaction holding a lock on the patient's user row:
// 1. Pending-count guard
// 2. Field validation, every failing field reported together
// 3. Doctor must practice the requested specialty
// 4. Slot must be free
// 5. Insert; a unique violation means a concurrent booking won the slot
func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	actor, err := requireRole(ctx, u.gate, entity.RolePatient)
	if err != nil {
		return nil, err
	}

	var appointment *entity.Appointment
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := u.userRepo.LockByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if !found {
			return ErrUnauthenticated
		}

		pending, err := u.appointmentRepo.CountByPatientAndStatus(ctx, actor.UserID, entity.AppointmentStatusPending)
		if err != nil {
			return err
		}
		if pending >= int64(u.policy.MaxPendingPerPatient) {
			return ErrTooManyPendingAppointments
		}

		booking, err := u.validateBooking(ctx, req)
		if err != nil {
			return err
		}

		assigned, err := u.specializationRepo.IsAssignedToStaff(ctx, booking.doctor.ID, booking.specialization.ID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrDoctorSpecialtyMismatch
		}

		slot := entity.AppointmentSlot(req.AppointmentTime)
		taken, err := u.appointmentRepo.ExistsActiveForSlot(ctx, booking.doctor.ID, booking.date, slot)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotUnavailable
		}

		appointment = &entity.Appointment{
			PatientID:       actor.UserID,
			DoctorID:        booking.doctor.ID,
			Specialty:       booking.specialization.Name,
			ReasonForVisit:  strings.TrimSpace(req.ReasonForVisit),
			AppointmentDate: booking.date,
			AppointmentTime: slot,
			VisitType:       entity.VisitType(req.VisitType),
			Status:          entity.AppointmentStatusPending,
		}
		if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
			return err
		}

		return u.auditService.LogCreate(ctx, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), map[string]interface{}{
			"doctor_id":        appointment.DoctorID,
			"specialty":        appointment.Specialty,
			"appointment_date": appointment.AppointmentDate.Format(dateLayout),
			"appointment_time": appointment.AppointmentTime,
			"visit_type":       appointment.VisitType,
		})
	})
	if err != nil {
		return nil, u.bookingFailure(actor, req, err)
	}

	u.metrics.ObserveBooking(metrics.BookingBooked)
	u.notifier.SendAppointmentConfirmation(ctx, appointment.ID)
	u.log.Infof("Appointment booked: id=%s, patient=%s, doctor=%s, date=%s, slot=%s",
		appointment.ID, appointment.PatientID, appointment.DoctorID, appointment.AppointmentDate.Format(dateLayout), appointment.AppointmentTime)

	full, err := u.appointmentRepo.FindByID(ctx, appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// validateBooking checks the request fields and resolves the doctor and specialty
func (u *appointmentUsecase) validateBooking(ctx context.Context, req *dto.BookAppointmentRequest) (*validatedBooking, error) {
	verr := newValidationError(u.validator.ValidateFields(req))
	booking := &validatedBooking{}

	if !verr.Has("doctor_id") {
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			verr.Add("doctor_id", "doctor_id must be a valid UUID")
		} else {
			booking.doctor, err = u.userRepo.FindByIDWithRole(ctx, doctorID, entity.RoleDoctor)
			if err != nil {
				return nil, err
			}
			if booking.doctor == nil {
				verr.Add("doctor_id", "the selected doctor does not exist")
			}
		}
	}

	if !verr.Has("specialty") {
		var err error
		booking.specialization, err = u.specializationRepo.FindByName(ctx, strings.TrimSpace(req.Specialty))
		if err != nil {
			return nil, err
		}
		if booking.specialization == nil {
			verr.Add("specialty", "the selected specialty does not exist")
		}
	}

	if !verr.Has("appointment_date") {
		date, err := time.ParseInLocation(dateLayout, req.AppointmentDate, u.policy.location())
		switch {
		case err != nil:
			verr.Add("appointment_date", "appointment_date must be a date in YYYY-MM-DD format")
		case date.Before(u.policy.today()):
			verr.Add("appointment_date", "appointment_date must be today or a later date")
		default:
			booking.date = date
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return booking, nil
}

// bookingFailure records the outcome of a failed booking and maps a lost slot race
func (u *appointmentUsecase) bookingFailure(actor *service.Actor, req *dto.BookAppointmentRequest, err error) error {
	var verr *ValidationError
	switch {
	case isDuplicateKeyError(err, slotConstraint):
		u.metrics.ObserveBooking(metrics.BookingConflict)
		u.log.WithFields(logrus.Fields{
			"actor_id":         actor.UserID,
			"operation":        "book_appointment",
			"doctor_id":        req.DoctorID,
			"appointment_date": req.AppointmentDate,
			"appointment_time": req.AppointmentTime,
		}).Warnf("Slot taken by a concurrent booking: %+v", err)
		return ErrBookingConflict
	case errors.Is(err, ErrUnauthenticated):
		u.log.WithFields(logrus.Fields{
			"actor_id":  actor.UserID,
			"operation": "book_appointment",
		}).Warn("Booking by an account that no longer exists")
	case errors.Is(err, ErrTooManyPendingAppointments):
		u.metrics.ObserveBooking(metrics.BookingTooManyPending)
	case errors.Is(err, ErrSlotUnavailable):
		u.metrics.ObserveBooking(metrics.BookingSlotUnavailable)
	case errors.As(err, &verr), errors.Is(err, ErrDoctorSpecialtyMismatch):
		u.metrics.ObserveBooking(metrics.BookingRejected)
	default:
		u.log.WithFields(logrus.Fields{
			"actor_id":  actor.UserID,
			"operation": "book_appointment",
		}).Errorf("Failed to book appointment: %+v", err)
	}
	return err
}

// GetMyAppointments lists the logged-in patient's appointments, newest date first
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	actor, err := requireRoleWith(ctx, u.gate, entity.RolePatient, entity.PermissionViewAppointments)
	if err != nil {
		return nil, err
	}

	filter, err := appointmentFilter(u.validator, query)
	if err != nil {
		return nil, err
	}

	appointments, total, err := u.appointmentRepo.FindByPatientID(ctx, actor.UserID, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// appointmentFilter validates list query parameters and converts them to a repository filter
func appointmentFilter(v *validator.CustomValidator, query *dto.AppointmentListQuery) (entity.AppointmentFilter, error) {
	if query == nil {
		query = &dto.AppointmentListQuery{}
	}
	if fields := v.ValidateFields(query); fields != nil {
		return entity.AppointmentFilter{}, newValidationError(fields)
	}

	page, limit := dto.NormalizePage(query.Page, query.Limit)
	return entity.AppointmentFilter{
		Status:     entity.AppointmentStatus(query.Status),
		DoctorName: strings.TrimSpace(query.DoctorName),
		DateFrom:   query.DateFrom,
		DateTo:     query.DateTo,
		Limit:      limit,
		Offset:     dto.Offset(page, limit),
	}, nil
}

// GetAppointment returns one appointment with its prescriptions.
// Visible to the owning patient, the assigned doctor, cashiers and super-admins.
func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if !canViewAppointment(ctx, u.gate, actor, appointment, entity.PermissionAcceptPayment) {
		return nil, ErrForbidden
	}

	return converter.AppointmentToResponse(appointment), nil
}

// canViewAppointment allows the owning patient, the assigned doctor and holders of
// any of the given desk permissions
func canViewAppointment(ctx context.Context, gate service.AccessGate, actor *service.Actor, a *entity.Appointment, permissions ...string) bool {
	if a.PatientID == actor.UserID || a.DoctorID == actor.UserID {
		return true
	}
	for _, p := range permissions {
		if gate.HasPermission(ctx, p) {
			return true
		}
	}
	return false
}

// DeleteAppointment hard-deletes a pending appointment of the logged-in patient
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	actor, err := requireRole(ctx, u.gate, entity.RolePatient)
	if err != nil {
		return err
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if appointment.PatientID != actor.UserID {
			return ErrAppointmentNotOwned
		}
		if !appointment.IsPending() {
			return ErrIllegalStateTransition
		}

		deleted, err := u.appointmentRepo.DeleteIfPending(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrIllegalStateTransition
		}

		return u.auditService.LogDelete(ctx, entity.AuditActionAppointmentDelete, "appointment", id.String(), map[string]interface{}{
			"doctor_id":        appointment.DoctorID,
			"appointment_date": appointment.AppointmentDate.Format(dateLayout),
			"appointment_time": appointment.AppointmentTime,
			"status":           appointment.Status,
		})
	})
	if err != nil {
		if !isAppointmentRuleError(err) {
			u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		}
		return err
	}

	u.log.Infof("Appointment deleted: id=%s, patient=%s", id, actor.UserID)
	return nil
}

// CancelAppointment soft-cancels a pending appointment and frees its slot.
// Allowed for the owning patient and the assigned doctor.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}

		isOwner := appointment.PatientID == actor.UserID && u.gate.HasRole(ctx, entity.RolePatient)
		isDoctor := appointment.DoctorID == actor.UserID && u.gate.HasRole(ctx, entity.RoleDoctor)
		if !isOwner && !isDoctor {
			return ErrForbidden
		}
		if !appointment.CanTransitionTo(entity.AppointmentStatusCancelled) {
			return ErrIllegalStateTransition
		}

		previous := appointment.Status
		appointment.Cancel(u.policy.now())
		cancelled, err := u.appointmentRepo.Cancel(ctx, id, *appointment.CancelledAt)
		if err != nil {
			return err
		}
		if cancelled == 0 {
			return ErrIllegalStateTransition
		}

		return u.auditService.LogUpdate(ctx, entity.AuditActionAppointmentCancel, "appointment", id.String(),
			map[string]interface{}{"status": previous},
			map[string]interface{}{"status": appointment.Status, "cancelled_at": appointment.CancelledAt},
		)
	})
	if err != nil {
		if !isAppointmentRuleError(err) {
			u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		}
		return err
	}

	u.metrics.ObserveAppointment(string(entity.AppointmentStatusCancelled))
	u.log.Infof("Appointment cancelled: id=%s, by=%s", id, actor.UserID)
	return nil
}

// isAppointmentRuleError reports whether err is an expected business rejection
func isAppointmentRuleError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAppointmentNotFound) ||
		errors.Is(err, ErrAppointmentNotOwned) ||
		errors.Is(err, ErrIllegalStateTransition)
}
