package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-management/internal/service"
	"clinic-management/pkg/jwt"
	"clinic-management/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	TokenIDKey   contextKey = "token_id"
)

// TokenChecker reports whether an issued token is still live
type TokenChecker interface {
	Exists(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error)
}

// ActorResolver loads the roles and permissions of an authenticated user
type ActorResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, email string) (*service.Actor, error)
}

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	tokens     TokenChecker
	actors     ActorResolver
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, tokens TokenChecker, actors ActorResolver, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokens:     tokens,
		actors:     actors,
		log:        log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		// Logged-out tokens are removed from Redis
		exists, err := m.tokens.Exists(r.Context(), jwt.AccessToken, claims.UserID, claims.TokenID)
		if err != nil {
			m.log.Warnf("Failed to check access token: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if !exists {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		actor, err := m.actors.Resolve(r.Context(), claims.UserID, claims.Email)
		if err != nil {
			m.log.Warnf("Failed to resolve permissions for user %s: %+v", claims.UserID, err)
			response.InternalServerError(w, "Failed to load permissions")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)
		ctx = service.WithActor(ctx, actor)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}
