package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrSpecializationNotFound      = errors.New("specialization not found")
	ErrSpecializationAlreadyExists = errors.New("specialization already exists")
)

type SpecializationUsecase interface {
	List(ctx context.Context) ([]dto.SpecializationResponse, error)
	Create(ctx context.Context, req *dto.SpecializationRequest) (*dto.SpecializationResponse, error)
	Update(ctx context.Context, id int, req *dto.SpecializationRequest) (*dto.SpecializationResponse, error)
	Delete(ctx context.Context, id int) error
}

type specializationUsecase struct {
	log                *logrus.Logger
	transactor         repository.Transactor
	specializationRepo repository.SpecializationRepository
	auditService       service.AuditService
	gate               service.AccessGate
}

func NewSpecializationUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	specializationRepo repository.SpecializationRepository,
	auditService service.AuditService,
	gate service.AccessGate,
) SpecializationUsecase {
	return &specializationUsecase{
		log:                log,
		transactor:         transactor,
		specializationRepo: specializationRepo,
		auditService:       auditService,
		gate:               gate,
	}
}

// List needs view.specializations, which patients hold so they can pick a specialty when booking
func (u *specializationUsecase) List(ctx context.Context) ([]dto.SpecializationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewSpecializations); err != nil {
		return nil, err
	}

	specializations, err := u.specializationRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find specializations: %+v", err)
		return nil, err
	}
	return converter.SpecializationsToResponses(specializations), nil
}

func (u *specializationUsecase) Create(ctx context.Context, req *dto.SpecializationRequest) (*dto.SpecializationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionCreateSpecializations); err != nil {
		return nil, err
	}

	specialization := &entity.Specialization{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.specializationRepo.Create(ctx, specialization); err != nil {
			if isDuplicateKeyError(err, "name") {
				return ErrSpecializationAlreadyExists
			}
			return err
		}
		return u.auditService.LogCreate(ctx, entity.AuditActionSpecializationCreate, "specialization",
			fmt.Sprint(specialization.ID), map[string]interface{}{"name": specialization.Name})
	})
	if err != nil {
		if !errors.Is(err, ErrSpecializationAlreadyExists) {
			u.log.Warnf("Failed to create specialization: %+v", err)
		}
		return nil, err
	}

	return converter.SpecializationToResponse(specialization), nil
}

func (u *specializationUsecase) Update(ctx context.Context, id int, req *dto.SpecializationRequest) (*dto.SpecializationResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionEditSpecializations); err != nil {
		return nil, err
	}

	var specialization *entity.Specialization
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		specialization, err = u.specializationRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if specialization == nil {
			return ErrSpecializationNotFound
		}

		old := map[string]interface{}{"name": specialization.Name, "description": specialization.Description}
		specialization.Name = strings.TrimSpace(req.Name)
		specialization.Description = req.Description
		if err := u.specializationRepo.Update(ctx, specialization); err != nil {
			if isDuplicateKeyError(err, "name") {
				return ErrSpecializationAlreadyExists
			}
			return err
		}
		return u.auditService.LogUpdate(ctx, entity.AuditActionSpecializationUpdate, "specialization", fmt.Sprint(id), old,
			map[string]interface{}{"name": specialization.Name, "description": specialization.Description})
	})
	if err != nil {
		if !errors.Is(err, ErrSpecializationNotFound) && !errors.Is(err, ErrSpecializationAlreadyExists) {
			u.log.Warnf("Failed to update specialization %d: %+v", id, err)
		}
		return nil, err
	}

	return converter.SpecializationToResponse(specialization), nil
}

func (u *specializationUsecase) Delete(ctx context.Context, id int) error {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionDeleteSpecializations); err != nil {
		return err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		specialization, err := u.specializationRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if specialization == nil {
			return ErrSpecializationNotFound
		}
		if err := u.specializationRepo.Delete(ctx, id); err != nil {
			return err
		}
		return u.auditService.LogDelete(ctx, entity.AuditActionSpecializationDelete, "specialization", fmt.Sprint(id),
			map[string]interface{}{"name": specialization.Name})
	})
	if err != nil {
		if !errors.Is(err, ErrSpecializationNotFound) {
			u.log.Warnf("Failed to delete specialization %d: %+v", id, err)
		}
		return err
	}
	return nil
}
