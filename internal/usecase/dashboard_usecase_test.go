package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *fakeMedicationRepo) FindLatest(_ context.Context, limit int) ([]entity.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Medication, 0, len(r.medications))
	for _, m := range r.medications {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMedicationRepo) CountLowStock(_ context.Context, threshold int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.medications {
		if m.StockLevel < threshold {
			n++
		}
	}
	return n, nil
}

func (r *fakeMedicationRepo) CountExpiringBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.medications {
		if m.Expiry != nil && !m.Expiry.Before(from) && !m.Expiry.After(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMedicationRepo) SumStock(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.medications {
		n += int64(m.StockLevel)
	}
	return n, nil
}

func seedCompleted(f *clinicFixture, at time.Time, amount string) {
	a := f.seedPending(f.patient, f.cardiologist, at, entity.SlotMorning)
	paid := decimal.RequireFromString(amount)
	stored := f.store.appointments[a.ID]
	stored.Status = entity.AppointmentStatusCompleted
	stored.CompletedAt = &at
	stored.PaymentAmount = &paid
}

func TestCashierDashboard(t *testing.T) {
	f := newClinicFixture(t)
	prescriptions := newFakePrescriptionRepo()
	uc := NewDashboardUsecase(quietLogger(), &fakeAppointmentRepo{s: f.store}, prescriptions, newFakeMedicationRepo(),
		service.NewAccessGate(), f.policy)

	seedCompleted(f, fixtureNow, "100.50")
	seedCompleted(f, fixtureNow.AddDate(0, 0, -1), "50")
	seedCompleted(f, fixtureNow.AddDate(0, -1, 0), "999")
	f.seedPending(f.patient, f.cardiologist, fixtureNow.AddDate(0, 0, 2), entity.SlotAfternoon)

	rxAmount := decimal.RequireFromString("20.25")
	prescriptions.prescriptions[uuid.New()] = &entity.Prescription{
		PaymentStatus: entity.PaymentStatusPaid,
		PaymentAmount: &rxAmount,
		UpdatedAt:     fixtureNow,
	}

	dashboard, err := uc.Cashier(f.asCashier())
	require.NoError(t, err)

	assert.EqualValues(t, 1, dashboard.ProcessedToday)
	assert.EqualValues(t, 1, dashboard.AwaitingPayment)
	assert.Equal(t, "170.75", dashboard.RevenueThisMonth.StringFixed(2))

	_, err = uc.Cashier(asUser(f.patient))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPharmacyDashboard(t *testing.T) {
	f := newClinicFixture(t)
	medications := newFakeMedicationRepo()
	uc := NewDashboardUsecase(quietLogger(), &fakeAppointmentRepo{s: f.store}, newFakePrescriptionRepo(), medications,
		service.NewAccessGate(), f.policy)

	soon := fixtureNow.AddDate(0, 2, 0)
	later := fixtureNow.AddDate(1, 0, 0)
	for i, stock := range []int{0, 5, 30, 100, 25, 60} {
		m := &entity.Medication{
			ID:         uuid.New(),
			Name:       "med",
			StockLevel: stock,
			Status:     entity.StatusForStock(stock),
			CreatedAt:  fixtureNow.Add(time.Duration(i) * time.Hour),
			Expiry:     &later,
		}
		if i < 2 {
			m.Expiry = &soon
		}
		medications.medications[m.ID] = m
	}

	dashboard, err := uc.Pharmacy(asUser(f.cardiologist, entity.PermissionViewMeds))
	require.NoError(t, err)

	assert.Len(t, dashboard.Latest, 5)
	assert.Equal(t, 60, dashboard.Latest[0].StockLevel)
	assert.EqualValues(t, 2, dashboard.LowStock)
	assert.EqualValues(t, 2, dashboard.ExpiringSoon)
	assert.EqualValues(t, 220, dashboard.TotalUnits)

	_, err = uc.Pharmacy(f.asCashier())
	assert.ErrorIs(t, err, ErrForbidden)
}
