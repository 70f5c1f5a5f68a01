package usecase

import (
	"context"
	"time"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardLatestMedications = 5
	expiryWarningMonths        = 3
)

type DashboardUsecase interface {
	Cashier(ctx context.Context) (*dto.CashierDashboardResponse, error)
	Pharmacy(ctx context.Context) (*dto.PharmacyDashboardResponse, error)
}

type dashboardUsecase struct {
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	prescriptionRepo repository.PrescriptionRepository
	medicationRepo   repository.MedicationRepository
	gate             service.AccessGate
	policy           BookingPolicy
}

func NewDashboardUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	medicationRepo repository.MedicationRepository,
	gate service.AccessGate,
	policy BookingPolicy,
) DashboardUsecase {
	return &dashboardUsecase{
		log:              log,
		appointmentRepo:  appointmentRepo,
		prescriptionRepo: prescriptionRepo,
		medicationRepo:   medicationRepo,
		gate:             gate,
		policy:           policy,
	}
}

// Cashier summarises today's completed visits, the payment queue and this month's revenue
func (u *dashboardUsecase) Cashier(ctx context.Context) (*dto.CashierDashboardResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionAcceptPayment); err != nil {
		return nil, err
	}

	today := u.policy.today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var (
		processed, awaiting     int64
		visitRevenue, rxRevenue decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		processed, err = u.appointmentRepo.CountCompletedBetween(gctx, today, today.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() error {
		var err error
		awaiting, err = u.appointmentRepo.CountByStatus(gctx, entity.AppointmentStatusPending)
		return err
	})
	g.Go(func() error {
		var err error
		visitRevenue, err = u.appointmentRepo.SumPaymentsBetween(gctx, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		rxRevenue, err = u.prescriptionRepo.SumPaidBetween(gctx, monthStart, monthEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build cashier dashboard: %+v", err)
		return nil, err
	}

	return &dto.CashierDashboardResponse{
		ProcessedToday:   processed,
		AwaitingPayment:  awaiting,
		RevenueThisMonth: visitRevenue.Add(rxRevenue).Round(2),
	}, nil
}

// Pharmacy summarises stock: newest items, low stock and items expiring soon
func (u *dashboardUsecase) Pharmacy(ctx context.Context) (*dto.PharmacyDashboardResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewMeds); err != nil {
		return nil, err
	}

	today := u.policy.today()

	var (
		latest             []entity.Medication
		lowStock, expiring int64
		totalUnits         int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		latest, err = u.medicationRepo.FindLatest(gctx, dashboardLatestMedications)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = u.medicationRepo.CountLowStock(gctx, entity.LowStockThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		expiring, err = u.medicationRepo.CountExpiringBetween(gctx, today, today.AddDate(0, expiryWarningMonths, 0))
		return err
	})
	g.Go(func() error {
		var err error
		totalUnits, err = u.medicationRepo.SumStock(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build pharmacy dashboard: %+v", err)
		return nil, err
	}

	return &dto.PharmacyDashboardResponse{
		Latest:       converter.MedicationsToResponses(latest),
		LowStock:     lowStock,
		ExpiringSoon: expiring,
		TotalUnits:   totalUnits,
	}, nil
}
