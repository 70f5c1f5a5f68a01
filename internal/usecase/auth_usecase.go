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
	"clinic-management/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrMatricNoAlreadyExists = errors.New("matric number already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountDisabled       = errors.New("account is disabled")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrUserNotFound          = errors.New("user not found")
	ErrRoleNotFound          = errors.New("role not found")
	ErrInvalidDateFormat     = errors.New("invalid date format, use YYYY-MM-DD")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	log                *logrus.Logger
	transactor         repository.Transactor
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
	jwtService         *jwt.JWTService
	tokenStore         *service.TokenStore
}

func NewAuthUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore *service.TokenStore,
) AuthUsecase {
	return &authUsecase{
		log:                log,
		transactor:         transactor,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
		jwtService:         jwtService,
		tokenStore:         tokenStore,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		dob = &parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	var user *entity.User
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.FindByName(ctx, entity.RolePatient)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}

		user = &entity.User{
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

		if err := u.roleRepo.AssignToUser(ctx, user.ID, role.ID); err != nil {
			return err
		}
		user.Roles = []entity.Role{*role}

		profile := &entity.PatientProfile{
			UserID:           user.ID,
			MatricNo:         strings.TrimSpace(req.MatricNo),
			Gender:           req.Gender,
			DateOfBirth:      dob,
			Address:          req.Address,
			EmergencyContact: req.EmergencyContact,
			BloodType:        req.BloodType,
			Genotype:         req.Genotype,
		}
		if err := u.patientProfileRepo.Create(ctx, profile); err != nil {
			if isDuplicateKeyError(err, "matric_no") {
				return ErrMatricNoAlreadyExists
			}
			return err
		}
		user.PatientProfile = profile

		return u.auditService.LogCreate(ctx, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
			"email": user.Email,
			"role":  entity.RolePatient,
		})
	})
	if err != nil {
		if !errors.Is(err, ErrEmailAlreadyExists) && !errors.Is(err, ErrMatricNoAlreadyExists) {
			u.log.Warnf("Failed to register patient: %+v", err)
		}
		return nil, err
	}

	u.log.Infof("Patient registered: id=%s", user.ID)
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, ErrAccountDisabled
	}

	return u.issueTokens(ctx, user.ID, user.Email)
}

// Logout revokes the current access token and, when given, its refresh token
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	if err := u.tokenStore.Revoke(ctx, jwt.AccessToken, userID, accessTokenID); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}
	if err := u.tokenStore.Revoke(ctx, jwt.RefreshToken, userID, refreshTokenID); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return err
	}
	return nil
}

// RefreshToken rotates a refresh token; the old one can not be used again
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.Revoke(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.Email)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	err = u.tokenStore.SavePair(ctx, userID,
		accessTokenID, u.jwtService.GetAccessExpiry(),
		refreshTokenID, u.jwtService.GetRefreshExpiry(),
	)
	if err != nil {
		u.log.Warnf("Failed to store tokens in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}
