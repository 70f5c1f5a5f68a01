package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *clinicFixture) bookingRequest(doctor *entity.User, specialty, date, slot string) *dto.BookAppointmentRequest {
	return &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		Specialty:       specialty,
		AppointmentDate: date,
		AppointmentTime: slot,
		VisitType:       string(entity.VisitTypeInPerson),
		ReasonForVisit:  "chest pain",
	}
}

func (f *clinicFixture) seedPending(patient, doctor *entity.User, date time.Time, slot entity.AppointmentSlot) *entity.Appointment {
	return f.store.seedAppointment(entity.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		Specialty:       "Cardiology",
		AppointmentDate: date,
		AppointmentTime: slot,
		VisitType:       entity.VisitTypeInPerson,
		Status:          entity.AppointmentStatusPending,
	})
}

func bookingOutcome(f *clinicFixture, outcome string) float64 {
	return testutil.ToFloat64(f.collector.BookingsTotal.WithLabelValues(outcome))
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestBookAppointment_RoundTrip(t *testing.T) {
	f := newClinicFixture(t)
	ctx := asUser(f.patient)

	booked, err := f.appointments.BookAppointment(ctx, f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusPending), booked.Status)

	read, err := f.appointments.GetAppointment(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, f.patient.ID, read.PatientID)
	assert.Equal(t, f.cardiologist.ID, read.DoctorID)
	assert.Equal(t, "Cardiology", read.Specialty)
	assert.Equal(t, "2025-01-10", read.AppointmentDate)
	assert.Equal(t, "morning", read.AppointmentTime)
	assert.Equal(t, "in-person", read.VisitType)
	assert.Equal(t, "pending", read.Status)
	assert.Equal(t, "chest pain", read.ReasonForVisit)

	assert.Equal(t, []uuid.UUID{booked.ID}, f.notifier.IDs())
	assert.Equal(t, []string{entity.AuditActionAppointmentCreate}, f.audit.Actions())
	assert.Equal(t, 1.0, bookingOutcome(f, metrics.BookingBooked))
}

func TestBookAppointment_TooManyPending(t *testing.T) {
	f := newClinicFixture(t)
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 3), entity.SlotMorning)
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 4), entity.SlotMorning)

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-20", "afternoon"))

	assert.ErrorIs(t, err, ErrTooManyPendingAppointments)
	assert.Equal(t, 2, f.store.count())
	assert.Empty(t, f.notifier.IDs())
	assert.Equal(t, 1.0, bookingOutcome(f, metrics.BookingTooManyPending))
}

func TestBookAppointment_AccountGone(t *testing.T) {
	f := newClinicFixture(t)
	ctx := asUser(f.patient)
	delete(f.store.users, f.patient.ID)

	_, err := f.appointments.BookAppointment(ctx, f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, f.store.count())
	assert.Empty(t, f.notifier.IDs())
}

func TestBookAppointment_PendingGuardRunsBeforeValidation(t *testing.T) {
	f := newClinicFixture(t)
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 3), entity.SlotMorning)
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 4), entity.SlotMorning)

	_, err := f.appointments.BookAppointment(asUser(f.patient), &dto.BookAppointmentRequest{})

	assert.ErrorIs(t, err, ErrTooManyPendingAppointments)
}

func TestBookAppointment_CompletedAndCancelledDoNotCountAsPending(t *testing.T) {
	f := newClinicFixture(t)
	done := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 3), entity.SlotMorning)
	gone := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 4), entity.SlotMorning)
	f.store.appointments[done.ID].Status = entity.AppointmentStatusCompleted
	f.store.appointments[gone.ID].Status = entity.AppointmentStatusCancelled

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-20", "morning"))

	assert.NoError(t, err)
}

func TestBookAppointment_DoctorSpecialtyMismatch(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.dermatologist, "Cardiology", "2025-01-10", "morning"))

	assert.ErrorIs(t, err, ErrDoctorSpecialtyMismatch)
	assert.Zero(t, f.store.count())
	assert.Equal(t, 1.0, bookingOutcome(f, metrics.BookingRejected))
}

func TestBookAppointment_PastDateFailsValidation(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-07", "morning"))

	fields := validationFields(t, err)
	assert.Contains(t, fields, "appointment_date")
	assert.Len(t, fields, 1)
	assert.Zero(t, f.store.count())
}

func TestBookAppointment_TodayIsAllowed(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-08", "afternoon"))

	assert.NoError(t, err)
}

func TestBookAppointment_ReportsEveryInvalidField(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.BookAppointment(asUser(f.patient), &dto.BookAppointmentRequest{
		DoctorID:        uuid.NewString(),
		Specialty:       "Astrology",
		AppointmentDate: "10/01/2025",
		AppointmentTime: "evening",
		VisitType:       "house-call",
	})

	fields := validationFields(t, err)
	for _, field := range []string{"doctor_id", "specialty", "appointment_date", "appointment_time", "visit_type"} {
		assert.Contains(t, fields, field)
	}
	assert.Zero(t, f.store.count())
}

func TestBookAppointment_DoctorMustHaveDoctorRole(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cashier, "Cardiology", "2025-01-10", "morning"))

	assert.Contains(t, validationFields(t, err), "doctor_id")
}

func TestBookAppointment_SlotUnavailable(t *testing.T) {
	f := newClinicFixture(t)
	other := f.newPatient("other")
	f.seedPending(other, f.cardiologist, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), entity.SlotMorning)

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, 1, f.store.count())
	assert.Equal(t, 1.0, bookingOutcome(f, metrics.BookingSlotUnavailable))
}

func TestBookAppointment_CancelledAppointmentFreesSlot(t *testing.T) {
	f := newClinicFixture(t)
	other := f.newPatient("other")
	taken := f.seedPending(other, f.cardiologist, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), entity.SlotMorning)

	require.NoError(t, f.appointments.CancelAppointment(asUser(other), taken.ID))

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))
	assert.NoError(t, err)
}

func TestBookAppointment_LostRaceReturnsConflict(t *testing.T) {
	f := newClinicFixture(t)
	other := f.newPatient("other")
	f.seedPending(other, f.cardiologist, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), entity.SlotMorning)
	f.store.staleSlotReads = true

	_, err := f.appointments.BookAppointment(asUser(f.patient), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))

	assert.ErrorIs(t, err, ErrBookingConflict)
	assert.Equal(t, 1, f.store.count())
	assert.Equal(t, 1.0, bookingOutcome(f, metrics.BookingConflict))
	assert.Empty(t, f.notifier.IDs())
}

func TestBookAppointment_ConcurrentBookingsForSameSlot(t *testing.T) {
	f := newClinicFixture(t)
	const attempts = 8

	patients := make([]*entity.User, attempts)
	for i := range patients {
		patients[i] = f.newPatient(uuid.NewString())
	}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.appointments.BookAppointment(asUser(patients[i]), f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrBookingConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.store.activeForSlot(f.cardiologist.ID, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), entity.SlotMorning))
}

func TestBookAppointment_RequiresPatient(t *testing.T) {
	f := newClinicFixture(t)
	req := f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning")

	_, err := f.appointments.BookAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.appointments.BookAppointment(asUser(f.cardiologist), req)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, f.store.count())
}

func TestDeleteAppointment(t *testing.T) {
	f := newClinicFixture(t)
	ctx := asUser(f.patient)

	pending := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 2), entity.SlotMorning)
	completed := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 3), entity.SlotMorning)
	f.store.appointments[completed.ID].Status = entity.AppointmentStatusCompleted

	err := f.appointments.DeleteAppointment(ctx, completed.ID)
	assert.ErrorIs(t, err, ErrIllegalStateTransition)
	_, exists := f.store.appointment(completed.ID)
	assert.True(t, exists)

	require.NoError(t, f.appointments.DeleteAppointment(ctx, pending.ID))
	_, exists = f.store.appointment(pending.ID)
	assert.False(t, exists)

	err = f.appointments.DeleteAppointment(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDeleteAppointment_OtherPatient(t *testing.T) {
	f := newClinicFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 2), entity.SlotMorning)

	err := f.appointments.DeleteAppointment(asUser(f.newPatient("stranger")), appointment.ID)

	assert.ErrorIs(t, err, ErrAppointmentNotOwned)
	assert.Equal(t, 1, f.store.count())
}

func TestCancelAppointment(t *testing.T) {
	f := newClinicFixture(t)
	byDoctor := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 2), entity.SlotMorning)
	byStranger := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 3), entity.SlotMorning)

	require.NoError(t, f.appointments.CancelAppointment(asUser(f.cardiologist), byDoctor.ID))
	stored, _ := f.store.appointment(byDoctor.ID)
	assert.Equal(t, entity.AppointmentStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)

	err := f.appointments.CancelAppointment(asUser(f.cardiologist), byDoctor.ID)
	assert.ErrorIs(t, err, ErrIllegalStateTransition)

	err = f.appointments.CancelAppointment(asUser(f.dermatologist), byStranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetAppointment_Visibility(t *testing.T) {
	f := newClinicFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 2), entity.SlotMorning)

	for name, ctx := range map[string]context.Context{
		"owner":           asUser(f.patient),
		"assigned doctor": asUser(f.cardiologist),
		"cashier":         f.asCashier(),
	} {
		_, err := f.appointments.GetAppointment(ctx, appointment.ID)
		assert.NoError(t, err, name)
	}

	_, err := f.appointments.GetAppointment(asUser(f.newPatient("stranger")), appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.appointments.GetAppointment(asUser(f.dermatologist), appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetMyAppointments_OnlyOwnNewestFirst(t *testing.T) {
	f := newClinicFixture(t)
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 2), entity.SlotMorning)
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 5), entity.SlotMorning)
	f.seedPending(f.newPatient("other"), f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)

	list, err := f.appointments.GetMyAppointments(asUser(f.patient), nil)

	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	require.Len(t, list.Appointments, 2)
	assert.Equal(t, "2025-01-13", list.Appointments[0].AppointmentDate)
}

func TestGetMyAppointments_RequiresViewGrant(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.GetMyAppointments(asUser(f.patient, entity.PermissionViewSpecializations), nil)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetMyAppointments_InvalidFilter(t *testing.T) {
	f := newClinicFixture(t)

	_, err := f.appointments.GetMyAppointments(asUser(f.patient), &dto.AppointmentListQuery{
		Status:   "confirmed",
		DateFrom: "10/01/2025",
	})

	fields := validationFields(t, err)
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "date_from")
	assert.NotContains(t, fields, "Status")
}

func TestBookingScenario(t *testing.T) {
	f := newClinicFixture(t)
	patientCtx := asUser(f.patient)

	first, err := f.appointments.BookAppointment(patientCtx, f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))
	require.NoError(t, err)
	assert.Equal(t, "pending", first.Status)

	_, err = f.appointments.BookAppointment(patientCtx, f.bookingRequest(f.cardiologist, "Cardiology", "2025-01-10", "morning"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	amount := decimal.NewFromInt(5000)
	paid, err := f.lifecycle.ProcessPayment(f.asCashier(), first.ID, &dto.ProcessPaymentRequest{
		PaymentMethod: "cash",
		PaymentAmount: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", paid.Status)

	err = f.appointments.DeleteAppointment(patientCtx, first.ID)
	assert.ErrorIs(t, err, ErrIllegalStateTransition)
	assert.Equal(t, 1, f.store.count())
}
