package service

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated user behind a request with resolved roles and permissions
type Actor struct {
	UserID      uuid.UUID
	Email       string
	Roles       []string
	Permissions []string
}

func (a *Actor) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasPermission is always true for super-admins
func (a *Actor) HasPermission(name string) bool {
	if a.HasRole(entity.RoleSuperAdmin) {
		return true
	}
	for _, p := range a.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

type actorKey struct{}

// WithActor stores the actor in ctx
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext extracts the actor stored by WithActor
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(*Actor)
	return actor, ok && actor != nil
}

// AccessGate answers role and permission questions about the request actor.
// A request without an actor has no roles and no permissions.
type AccessGate interface {
	HasPermission(ctx context.Context, permission string) bool
	HasRole(ctx context.Context, role string) bool
}

type contextAccessGate struct{}

func NewAccessGate() AccessGate {
	return contextAccessGate{}
}

func (contextAccessGate) HasPermission(ctx context.Context, permission string) bool {
	actor, ok := ActorFromContext(ctx)
	return ok && actor.HasPermission(permission)
}

func (contextAccessGate) HasRole(ctx context.Context, role string) bool {
	actor, ok := ActorFromContext(ctx)
	return ok && actor.HasRole(role)
}
