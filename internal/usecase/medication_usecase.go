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
	"clinic-management/internal/service"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrMedicationInUse    = errors.New("medication has prescriptions and can not be deleted")
)

type MedicationUsecase interface {
	Create(ctx context.Context, req *dto.CreateMedicationRequest) (*dto.MedicationResponse, error)
	GetAll(ctx context.Context, query *dto.MedicationListQuery) (*dto.MedicationListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.MedicationResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateMedicationRequest) (*dto.MedicationResponse, error)
	Restock(ctx context.Context, id uuid.UUID, req *dto.RestockRequest) (*dto.MedicationResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type medicationUsecase struct {
	log            *logrus.Logger
	transactor     repository.Transactor
	medicationRepo repository.MedicationRepository
	auditService   service.AuditService
	gate           service.AccessGate
	validator      *validator.CustomValidator
}

func NewMedicationUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	medicationRepo repository.MedicationRepository,
	auditService service.AuditService,
	gate service.AccessGate,
	validator *validator.CustomValidator,
) MedicationUsecase {
	return &medicationUsecase{
		log:            log,
		transactor:     transactor,
		medicationRepo: medicationRepo,
		auditService:   auditService,
		gate:           gate,
		validator:      validator,
	}
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	return &parsed, nil
}

func medicationSnapshot(m *entity.Medication) map[string]interface{} {
	snapshot := map[string]interface{}{
		"name":        m.Name,
		"stock_level": m.StockLevel,
		"status":      m.Status,
		"supplier":    m.Supplier,
	}
	if m.Expiry != nil {
		snapshot["expiry"] = m.Expiry.Format(dateLayout)
	}
	return snapshot
}

func (u *medicationUsecase) Create(ctx context.Context, req *dto.CreateMedicationRequest) (*dto.MedicationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionCreateMeds); err != nil {
		return nil, err
	}

	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		return nil, err
	}

	medication := &entity.Medication{
		Name:       strings.TrimSpace(req.Name),
		StockLevel: req.StockLevel,
		Status:     entity.StatusForStock(req.StockLevel),
		Expiry:     expiry,
		Supplier:   strings.TrimSpace(req.Supplier),
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.medicationRepo.Create(ctx, medication); err != nil {
			return err
		}
		return u.auditService.LogCreate(ctx, entity.AuditActionMedicationCreate, "medication", medication.ID.String(), medicationSnapshot(medication))
	})
	if err != nil {
		u.log.Warnf("Failed to create medication: %+v", err)
		return nil, err
	}

	return converter.MedicationToResponse(medication), nil
}

func (u *medicationUsecase) GetAll(ctx context.Context, query *dto.MedicationListQuery) (*dto.MedicationListResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewMeds); err != nil {
		return nil, err
	}
	if query == nil {
		query = &dto.MedicationListQuery{}
	}
	if fields := u.validator.ValidateFields(query); fields != nil {
		return nil, newValidationError(fields)
	}

	page, limit := dto.NormalizePage(query.Page, query.Limit)
	medications, total, err := u.medicationRepo.FindAll(ctx, entity.MedicationFilter{
		Search:     strings.TrimSpace(query.Search),
		ExpiryFrom: query.ExpiryFrom,
		ExpiryTo:   query.ExpiryTo,
		Limit:      limit,
		Offset:     dto.Offset(page, limit),
	})
	if err != nil {
		u.log.Warnf("Failed to find all medications: %+v", err)
		return nil, err
	}

	return &dto.MedicationListResponse{
		Medications: converter.MedicationsToResponses(medications),
		Total:       total,
	}, nil
}

func (u *medicationUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.MedicationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewMeds); err != nil {
		return nil, err
	}

	medication, err := u.medicationRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find medication by ID: %+v", err)
		return nil, err
	}
	if medication == nil {
		return nil, ErrMedicationNotFound
	}

	return converter.MedicationToResponse(medication), nil
}

func (u *medicationUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateMedicationRequest) (*dto.MedicationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionEditMeds); err != nil {
		return nil, err
	}

	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		return nil, err
	}

	var medication *entity.Medication
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		medication, err = u.medicationRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if medication == nil {
			return ErrMedicationNotFound
		}

		before := medicationSnapshot(medication)
		medication.Name = strings.TrimSpace(req.Name)
		medication.StockLevel = req.StockLevel
		medication.Status = entity.StatusForStock(req.StockLevel)
		medication.Expiry = expiry
		medication.Supplier = strings.TrimSpace(req.Supplier)

		if err := u.medicationRepo.Update(ctx, medication); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, entity.AuditActionMedicationUpdate, "medication", id.String(), before, medicationSnapshot(medication))
	})
	if err != nil {
		if !errors.Is(err, ErrMedicationNotFound) {
			u.log.Warnf("Failed to update medication %s: %+v", id, err)
		}
		return nil, err
	}

	return converter.MedicationToResponse(medication), nil
}

// Restock adds units under a row lock so concurrent restocks do not lose updates
func (u *medicationUsecase) Restock(ctx context.Context, id uuid.UUID, req *dto.RestockRequest) (*dto.MedicationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionEditMeds); err != nil {
		return nil, err
	}

	amount := dto.DefaultRestockAmount
	if req != nil && req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 1 {
		return nil, newValidationError(map[string]string{"amount": "amount must be 1 or greater"})
	}

	var medication *entity.Medication
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		medication, err = u.medicationRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if medication == nil {
			return ErrMedicationNotFound
		}

		before := medication.StockLevel
		medication.Restock(amount)
		if err := u.medicationRepo.Update(ctx, medication); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, entity.AuditActionMedicationRestock, "medication", id.String(),
			map[string]interface{}{"stock_level": before},
			map[string]interface{}{"stock_level": medication.StockLevel, "added": amount},
		)
	})
	if err != nil {
		if !errors.Is(err, ErrMedicationNotFound) {
			u.log.Warnf("Failed to restock medication %s: %+v", id, err)
		}
		return nil, err
	}

	u.log.Infof("Medication restocked: id=%s, added=%d, stock=%d", id, amount, medication.StockLevel)
	return converter.MedicationToResponse(medication), nil
}

func (u *medicationUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionDeleteMeds); err != nil {
		return err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		medication, err := u.medicationRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if medication == nil {
			return ErrMedicationNotFound
		}
		if err := u.medicationRepo.Delete(ctx, id); err != nil {
			if isForeignKeyError(err, "medication") {
				return ErrMedicationInUse
			}
			return err
		}
		return u.auditService.LogDelete(ctx, entity.AuditActionMedicationDelete, "medication", id.String(), medicationSnapshot(medication))
	})
	if err != nil {
		if !errors.Is(err, ErrMedicationNotFound) && !errors.Is(err, ErrMedicationInUse) {
			u.log.Warnf("Failed to delete medication %s: %+v", id, err)
		}
		return err
	}
	return nil
}
