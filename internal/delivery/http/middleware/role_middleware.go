package middleware

import (
	"net/http"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/service"
	"clinic-management/pkg/response"
)

// RequireRole lets the request through when the actor holds any of the roles.
// The actor is set by AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := service.ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, role := range roles {
				if actor.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequirePermission lets the request through when the actor holds any of the permissions.
// Super-admins hold every permission.
func RequirePermission(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := service.ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Permission information not found")
				return
			}

			for _, p := range permissions {
				if actor.HasPermission(p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireSuperAdmin is a convenience middleware for super-admin endpoints
func RequireSuperAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleSuperAdmin)(next)
}

// RequireDoctor is a convenience middleware for doctor endpoints
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor)(next)
}

// RequirePatient is a convenience middleware for patient endpoints
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RolePatient)(next)
}
