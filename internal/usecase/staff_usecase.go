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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrCannotDeleteSelf = errors.New("you can not delete your own account")

type StaffUsecase interface {
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.UserResponse, error)
	ListStaff(ctx context.Context, role string) ([]dto.UserResponse, error)
	ListDoctors(ctx context.Context, specialty string) ([]dto.DoctorResponse, error)
	SyncSpecializations(ctx context.Context, userID uuid.UUID, req *dto.SyncSpecializationsRequest) (*dto.UserResponse, error)
	DeleteStaff(ctx context.Context, userID uuid.UUID) error
}

type staffUsecase struct {
	log                *logrus.Logger
	transactor         repository.Transactor
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	specializationRepo repository.SpecializationRepository
	auditService       service.AuditService
	aclCache           service.ACLInvalidator
	tokenStore         *service.TokenStore
	gate               service.AccessGate
}

func NewStaffUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	specializationRepo repository.SpecializationRepository,
	auditService service.AuditService,
	aclCache service.ACLInvalidator,
	tokenStore *service.TokenStore,
	gate service.AccessGate,
) StaffUsecase {
	return &staffUsecase{
		log:                log,
		transactor:         transactor,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		specializationRepo: specializationRepo,
		auditService:       auditService,
		aclCache:           aclCache,
		tokenStore:         tokenStore,
		gate:               gate,
	}
}

// CreateStaff creates a staff account with one role and optional specializations
func (u *staffUsecase) CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.UserResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionCreateStaff); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	var userID uuid.UUID
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.FindByName(ctx, req.Role)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}
		if err := u.checkSpecializations(ctx, req.SpecializationIDs); err != nil {
			return err
		}

		user := &entity.User{
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			Password: string(hashedPassword),
			FullName: strings.TrimSpace(req.FullName),
			Phone:    req.Phone,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			return err
		}
		userID = user.ID

		if err := u.roleRepo.AssignToUser(ctx, user.ID, role.ID); err != nil {
			return err
		}
		if len(req.SpecializationIDs) > 0 {
			if err := u.specializationRepo.SyncStaffSpecializations(ctx, user.ID, req.SpecializationIDs); err != nil {
				return err
			}
		}

		return u.auditService.LogCreate(ctx, entity.AuditActionStaffCreate, "user", user.ID.String(), map[string]interface{}{
			"email":              user.Email,
			"role":               role.Name,
			"specialization_ids": req.SpecializationIDs,
		})
	})
	if err != nil {
		if !isStaffRuleError(err) {
			u.log.Warnf("Failed to create staff: %+v", err)
		}
		return nil, err
	}

	u.log.Infof("Staff created: id=%s, role=%s", userID, req.Role)
	return u.reload(ctx, userID)
}

func (u *staffUsecase) ListStaff(ctx context.Context, role string) ([]dto.UserResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewStaff); err != nil {
		return nil, err
	}
	if role == "" {
		role = entity.RoleDoctor
	}

	users, err := u.userRepo.FindByRole(ctx, role, "")
	if err != nil {
		u.log.Warnf("Failed to find staff with role %s: %+v", role, err)
		return nil, err
	}

	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *converter.UserToResponse(&users[i])
		responses[i].Roles = []string{role}
	}
	return responses, nil
}

// ListDoctors is the doctor directory used when booking, optionally narrowed to a specialty
func (u *staffUsecase) ListDoctors(ctx context.Context, specialty string) ([]dto.DoctorResponse, error) {
	if _, err := currentActor(ctx); err != nil {
		return nil, err
	}

	doctors, err := u.userRepo.FindByRole(ctx, entity.RoleDoctor, strings.TrimSpace(specialty))
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}
	return converter.UsersToDoctorResponses(doctors), nil
}

func (u *staffUsecase) SyncSpecializations(ctx context.Context, userID uuid.UUID, req *dto.SyncSpecializationsRequest) (*dto.UserResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionEditStaff); err != nil {
		return nil, err
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if err := u.checkSpecializations(ctx, req.SpecializationIDs); err != nil {
			return err
		}
		return u.specializationRepo.SyncStaffSpecializations(ctx, userID, req.SpecializationIDs)
	})
	if err != nil {
		if !isStaffRuleError(err) {
			u.log.Warnf("Failed to sync specializations of user %s: %+v", userID, err)
		}
		return nil, err
	}

	return u.reload(ctx, userID)
}

// DeleteStaff removes a staff account and revokes its sessions
func (u *staffUsecase) DeleteStaff(ctx context.Context, userID uuid.UUID) error {
	actor, err := requirePermission(ctx, u.gate, entity.PermissionDeleteStaff)
	if err != nil {
		return err
	}
	if actor.UserID == userID {
		return ErrCannotDeleteSelf
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if err := u.userRepo.Delete(ctx, userID); err != nil {
			return err
		}
		return u.auditService.LogDelete(ctx, entity.AuditActionStaffDelete, "user", userID.String(), map[string]interface{}{
			"email": user.Email,
			"roles": user.RoleNames(),
		})
	})
	if err != nil {
		if !isStaffRuleError(err) {
			u.log.Warnf("Failed to delete staff %s: %+v", userID, err)
		}
		return err
	}

	if err := u.tokenStore.RevokeAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke tokens of deleted user %s: %+v", userID, err)
	}
	if err := u.aclCache.InvalidateUser(ctx, userID); err != nil {
		u.log.Warnf("Failed to invalidate ACL cache for user %s: %+v", userID, err)
	}
	return nil
}

func (u *staffUsecase) checkSpecializations(ctx context.Context, ids []int) error {
	for _, id := range ids {
		specialization, err := u.specializationRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if specialization == nil {
			return newValidationError(map[string]string{
				"specialization_ids": fmt.Sprintf("specialization %d does not exist", id),
			})
		}
	}
	return nil
}

func (u *staffUsecase) reload(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to reload user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

func isStaffRuleError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEmailAlreadyExists)
}
