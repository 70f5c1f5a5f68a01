package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrescriptionRepo struct {
	repository.PrescriptionRepository
	mu            sync.Mutex
	prescriptions map[uuid.UUID]*entity.Prescription
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{prescriptions: map[uuid.UUID]*entity.Prescription{}}
}

func (r *fakePrescriptionRepo) Create(_ context.Context, p *entity.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	stored := *p
	r.prescriptions[p.ID] = &stored
	return nil
}

func (r *fakePrescriptionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, nil
	}
	found := *p
	return &found, nil
}

func (r *fakePrescriptionRepo) FindByAppointmentID(_ context.Context, appointmentID uuid.UUID) ([]entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Prescription
	for _, p := range r.prescriptions {
		if p.AppointmentID != nil && *p.AppointmentID == appointmentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePrescriptionRepo) UpdateBilling(_ context.Context, p *entity.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	r.prescriptions[p.ID] = &stored
	return nil
}

func (r *fakePrescriptionRepo) SumPaidBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.prescriptions {
		updated := p.UpdatedAt
		if p.PaymentStatus == entity.PaymentStatusPaid && p.PaymentAmount != nil && inRange(&updated, from, to) {
			sum = sum.Add(*p.PaymentAmount)
		}
	}
	return sum, nil
}

type prescriptionFixture struct {
	*clinicFixture
	prescriptions PrescriptionUsecase
	repo          *fakePrescriptionRepo
	medications   *fakeMedicationRepo
	aspirin       *entity.Medication
}

func newPrescriptionFixture(t *testing.T) *prescriptionFixture {
	t.Helper()
	f := newClinicFixture(t)
	repo := newFakePrescriptionRepo()
	medications := newFakeMedicationRepo()
	aspirin := &entity.Medication{Name: "Aspirin", StockLevel: 40, Status: entity.MedicationInStock}
	require.NoError(t, medications.Create(context.Background(), aspirin))

	uc := NewPrescriptionUsecase(
		quietLogger(), fakeTransactor{}, repo, &fakeAppointmentRepo{s: f.store}, medications,
		f.audit, service.NewAccessGate(), validator.NewValidator(), f.collector, f.policy,
	)
	return &prescriptionFixture{clinicFixture: f, prescriptions: uc, repo: repo, medications: medications, aspirin: aspirin}
}

func (f *prescriptionFixture) asPrescriber(u *entity.User) context.Context {
	return asUser(u, entity.PermissionGivePrescription)
}

func TestCreatePrescription(t *testing.T) {
	f := newPrescriptionFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)

	resp, err := f.prescriptions.Create(f.asPrescriber(f.cardiologist), appointment.ID, &dto.CreatePrescriptionRequest{
		MedicationID: f.aspirin.ID.String(),
		Quantity:     " 2 tablets ",
		Instructions: "after meals",
	})
	require.NoError(t, err)

	assert.Equal(t, "2 tablets", resp.Quantity)
	assert.Equal(t, "pending", resp.PaymentStatus)
	assert.Equal(t, "2025-01-08", resp.PrescribedDate)
	require.NotNil(t, resp.PrescribedByID)
	assert.Equal(t, f.cardiologist.ID, *resp.PrescribedByID)
	assert.Equal(t, []string{entity.AuditActionPrescriptionCreate}, f.audit.Actions())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.PrescriptionsIssued))
}

func TestCreatePrescription_OnlyAssignedDoctor(t *testing.T) {
	f := newPrescriptionFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)
	req := &dto.CreatePrescriptionRequest{MedicationID: f.aspirin.ID.String(), Quantity: "1"}

	_, err := f.prescriptions.Create(f.asPrescriber(f.dermatologist), appointment.ID, req)
	assert.ErrorIs(t, err, ErrAppointmentNotAssigned)

	_, err = f.prescriptions.Create(asUser(f.patient), appointment.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	pharmacist := f.store.addUser("pharmacist", entity.RolePharmacist)
	_, err = f.prescriptions.Create(asUser(pharmacist), appointment.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := f.store.addUser("admin", entity.RoleSuperAdmin)
	_, err = f.prescriptions.Create(asUser(admin), appointment.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.repo.prescriptions)
}

func TestGetPrescriptionsByAppointment_Visibility(t *testing.T) {
	f := newPrescriptionFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)
	_, err := f.prescriptions.Create(f.asPrescriber(f.cardiologist), appointment.ID, &dto.CreatePrescriptionRequest{
		MedicationID: f.aspirin.ID.String(),
		Quantity:     "1",
	})
	require.NoError(t, err)

	for name, ctx := range map[string]context.Context{
		"owner":           asUser(f.patient),
		"assigned doctor": asUser(f.cardiologist),
		"pharmacist":      asUser(f.store.addUser("pharmacist", entity.RolePharmacist)),
		"cashier":         f.asCashier(),
	} {
		list, err := f.prescriptions.GetByAppointment(ctx, appointment.ID)
		require.NoError(t, err, name)
		assert.Len(t, list, 1, name)
	}

	_, err = f.prescriptions.GetByAppointment(asUser(f.newPatient("stranger")), appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.prescriptions.GetByAppointment(asUser(f.dermatologist), appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.prescriptions.GetByAppointment(asUser(f.patient), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCreatePrescription_RefusedOnCancelled(t *testing.T) {
	f := newPrescriptionFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)
	f.store.appointments[appointment.ID].Status = entity.AppointmentStatusCancelled

	_, err := f.prescriptions.Create(f.asPrescriber(f.cardiologist), appointment.ID, &dto.CreatePrescriptionRequest{
		MedicationID: f.aspirin.ID.String(),
		Quantity:     "1",
	})

	assert.ErrorIs(t, err, ErrIllegalStateTransition)
	assert.Empty(t, f.repo.prescriptions)
}

func TestCreatePrescription_UnknownMedication(t *testing.T) {
	f := newPrescriptionFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)

	_, err := f.prescriptions.Create(f.asPrescriber(f.cardiologist), appointment.ID, &dto.CreatePrescriptionRequest{
		MedicationID: uuid.NewString(),
		Quantity:     "1",
	})

	assert.Contains(t, validationFields(t, err), "medication_id")
}

func TestUpdatePrescriptionBilling(t *testing.T) {
	f := newPrescriptionFixture(t)
	appointment := f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 1), entity.SlotMorning)
	created, err := f.prescriptions.Create(f.asPrescriber(f.cardiologist), appointment.ID, &dto.CreatePrescriptionRequest{
		MedicationID: f.aspirin.ID.String(),
		Quantity:     "1",
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("12.345")
	resp, err := f.prescriptions.UpdateBilling(f.asCashier(), created.ID, &dto.UpdatePrescriptionBillingRequest{
		PaymentMethod: "card",
		PaymentAmount: &amount,
		PaymentStatus: "paid",
	})
	require.NoError(t, err)

	assert.Equal(t, "paid", resp.PaymentStatus)
	assert.Equal(t, "12.35", resp.PaymentAmount.StringFixed(2))

	negative := decimal.NewFromInt(-5)
	_, err = f.prescriptions.UpdateBilling(f.asCashier(), created.ID, &dto.UpdatePrescriptionBillingRequest{
		PaymentMethod: "card",
		PaymentAmount: &negative,
		PaymentStatus: "paid",
	})
	assert.Contains(t, validationFields(t, err), "payment_amount")

	_, err = f.prescriptions.UpdateBilling(f.asCashier(), uuid.New(), &dto.UpdatePrescriptionBillingRequest{
		PaymentMethod: "card",
		PaymentAmount: &amount,
		PaymentStatus: "paid",
	})
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
}
