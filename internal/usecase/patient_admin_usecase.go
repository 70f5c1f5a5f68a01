package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrPatientNotFound = errors.New("patient not found")

const registrationStatsDays = 30

type PatientAdminUsecase interface {
	ListPatients(ctx context.Context, query *dto.PatientListQuery) (*dto.PatientListResponse, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientDetailResponse, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.UserResponse, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	RegistrationStats(ctx context.Context) (*dto.RegistrationStatsResponse, error)
}

type patientAdminUsecase struct {
	log             *logrus.Logger
	transactor      repository.Transactor
	userRepo        repository.UserRepository
	roleRepo        repository.RoleRepository
	profileRepo     repository.PatientProfileRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	aclCache        service.ACLInvalidator
	tokenStore      *service.TokenStore
	gate            service.AccessGate
	validator       *validator.CustomValidator
	policy          BookingPolicy
}

func NewPatientAdminUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	profileRepo repository.PatientProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	aclCache service.ACLInvalidator,
	tokenStore *service.TokenStore,
	gate service.AccessGate,
	validator *validator.CustomValidator,
	policy BookingPolicy,
) PatientAdminUsecase {
	return &patientAdminUsecase{
		log:             log,
		transactor:      transactor,
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		profileRepo:     profileRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		aclCache:        aclCache,
		tokenStore:      tokenStore,
		gate:            gate,
		validator:       validator,
		policy:          policy,
	}
}

func (u *patientAdminUsecase) ListPatients(ctx context.Context, query *dto.PatientListQuery) (*dto.PatientListResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewPatients); err != nil {
		return nil, err
	}
	if query == nil {
		query = &dto.PatientListQuery{}
	}
	if fields := u.validator.ValidateFields(query); fields != nil {
		return nil, newValidationError(fields)
	}

	page, limit := dto.NormalizePage(query.Page, query.Limit)
	users, total, err := u.userRepo.FindPatients(ctx, entity.PatientFilter{
		Search: strings.TrimSpace(query.Search),
		Limit:  limit,
		Offset: dto.Offset(page, limit),
	})
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	patients := make([]dto.UserResponse, len(users))
	for i := range users {
		patients[i] = *converter.UserToResponse(&users[i])
	}
	return &dto.PatientListResponse{Patients: patients, Total: total}, nil
}

// GetPatient returns the account with its appointment history. The history is
// left out for callers without view.medical.records.
func (u *patientAdminUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientDetailResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewPatients); err != nil {
		return nil, err
	}

	patient, err := u.findPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.PatientDetailResponse{Patient: *converter.UserToResponse(patient)}
	if !u.gate.HasPermission(ctx, entity.PermissionViewMedicalRecords) {
		return resp, nil
	}

	appointments, total, err := u.appointmentRepo.FindByPatientID(ctx, id, entity.AppointmentFilter{Limit: dto.MaxPageSize})
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", id, err)
		return nil, err
	}
	resp.Appointments = converter.AppointmentsToResponses(appointments)
	resp.AppointmentsTotal = total
	return resp, nil
}

// UpdatePatient edits name, email and matric number, and may move the account to another role
func (u *patientAdminUsecase) UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.UserResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionEditPatients); err != nil {
		return nil, err
	}

	roleChanged := false
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		patient, err := u.findPatient(ctx, id)
		if err != nil {
			return err
		}
		role, err := u.roleRepo.FindByName(ctx, req.Role)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}

		before := map[string]interface{}{
			"full_name": patient.FullName,
			"email":     patient.Email,
			"matric_no": matricNo(patient),
			"roles":     patient.RoleNames(),
		}

		changes := &entity.User{
			ID:       id,
			FullName: strings.TrimSpace(req.FullName),
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		}
		if err := u.userRepo.Update(ctx, changes); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			return err
		}

		matric := strings.TrimSpace(req.MatricNo)
		if matric != matricNo(patient) {
			if err := u.profileRepo.UpsertMatricNo(ctx, id, matric); err != nil {
				if isDuplicateKeyError(err, "matric_no") {
					return ErrMatricNoAlreadyExists
				}
				return err
			}
		}

		if role.Name != entity.RolePatient {
			if err := u.roleRepo.ReplaceUserRoles(ctx, id, role.ID); err != nil {
				return err
			}
			roleChanged = true
		}

		return u.auditService.LogUpdate(ctx, entity.AuditActionPatientUpdate, "user", id.String(), before, map[string]interface{}{
			"full_name": changes.FullName,
			"email":     changes.Email,
			"matric_no": matric,
			"roles":     []string{role.Name},
		})
	})
	if err != nil {
		if !isPatientAdminRuleError(err) {
			u.log.Warnf("Failed to update patient %s: %+v", id, err)
		}
		return nil, err
	}

	if roleChanged {
		u.log.Infof("Patient %s moved to role %s", id, req.Role)
		if err := u.aclCache.InvalidateUser(ctx, id); err != nil {
			u.log.Warnf("Failed to invalidate ACL cache for user %s: %+v", id, err)
		}
	}

	user, err := u.userRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to reload user %s: %+v", id, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

// DeletePatient removes the account. Its appointments and profile go with it
// through the foreign key cascades; prescriptions keep their rows, unlinked.
func (u *patientAdminUsecase) DeletePatient(ctx context.Context, id uuid.UUID) error {
	actor, err := requirePermission(ctx, u.gate, entity.PermissionDeletePatients)
	if err != nil {
		return err
	}
	if actor.UserID == id {
		return ErrCannotDeleteSelf
	}

	var appointments int64
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		patient, err := u.findPatient(ctx, id)
		if err != nil {
			return err
		}
		if _, appointments, err = u.appointmentRepo.FindByPatientID(ctx, id, entity.AppointmentFilter{Limit: 1}); err != nil {
			return err
		}
		if err := u.userRepo.Delete(ctx, id); err != nil {
			return err
		}
		return u.auditService.LogDelete(ctx, entity.AuditActionPatientDelete, "user", id.String(), map[string]interface{}{
			"email":        patient.Email,
			"matric_no":    matricNo(patient),
			"appointments": appointments,
		})
	})
	if err != nil {
		if !isPatientAdminRuleError(err) {
			u.log.Warnf("Failed to delete patient %s: %+v", id, err)
		}
		return err
	}

	u.log.WithFields(logrus.Fields{
		"actor_id":     actor.UserID,
		"patient_id":   id,
		"appointments": appointments,
	}).Info("Patient deleted")

	if err := u.tokenStore.RevokeAll(ctx, id); err != nil {
		u.log.Warnf("Failed to revoke tokens of deleted user %s: %+v", id, err)
	}
	if err := u.aclCache.InvalidateUser(ctx, id); err != nil {
		u.log.Warnf("Failed to invalidate ACL cache for user %s: %+v", id, err)
	}
	return nil
}

// RegistrationStats counts patient sign-ups per day over the last 30 days, today included
func (u *patientAdminUsecase) RegistrationStats(ctx context.Context) (*dto.RegistrationStatsResponse, error) {
	if _, err := requirePermission(ctx, u.gate, entity.PermissionViewPatients); err != nil {
		return nil, err
	}

	since := u.policy.today().AddDate(0, 0, -(registrationStatsDays - 1))
	counts, err := u.userRepo.CountRegistrationsSince(ctx, entity.RolePatient, since)
	if err != nil {
		u.log.Warnf("Failed to count patient registrations: %+v", err)
		return nil, err
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Day] = c.Count
	}

	resp := &dto.RegistrationStatsResponse{Days: make([]dto.DailyRegistration, registrationStatsDays)}
	for i := range resp.Days {
		day := since.AddDate(0, 0, i).Format(dateLayout)
		resp.Days[i] = dto.DailyRegistration{Date: day, Count: byDay[day]}
		resp.Total += byDay[day]
	}
	return resp, nil
}

// findPatient loads a user that holds the patient role
func (u *patientAdminUsecase) findPatient(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasRole(entity.RolePatient) {
		return nil, ErrPatientNotFound
	}
	return user, nil
}

func matricNo(u *entity.User) string {
	if u.PatientProfile == nil {
		return ""
	}
	return u.PatientProfile.MatricNo
}

func isPatientAdminRuleError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrPatientNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrEmailAlreadyExists) ||
		errors.Is(err, ErrMatricNoAlreadyExists)
}
