package service

import (
	"context"
	"testing"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccessGate_NoActor(t *testing.T) {
	gate := NewAccessGate()
	ctx := context.Background()

	assert.False(t, gate.HasRole(ctx, entity.RolePatient))
	assert.False(t, gate.HasPermission(ctx, entity.PermissionAcceptPayment))
}

func TestAccessGate_RolesAndPermissions(t *testing.T) {
	gate := NewAccessGate()
	ctx := WithActor(context.Background(), &Actor{
		UserID:      uuid.New(),
		Roles:       []string{entity.RoleCashier},
		Permissions: []string{entity.PermissionAcceptPayment},
	})

	assert.True(t, gate.HasRole(ctx, entity.RoleCashier))
	assert.False(t, gate.HasRole(ctx, entity.RoleDoctor))
	assert.True(t, gate.HasPermission(ctx, entity.PermissionAcceptPayment))
	assert.False(t, gate.HasPermission(ctx, entity.PermissionDeleteMeds))
}

func TestAccessGate_SuperAdminHasEveryPermission(t *testing.T) {
	gate := NewAccessGate()
	ctx := WithActor(context.Background(), &Actor{
		UserID: uuid.New(),
		Roles:  []string{entity.RoleSuperAdmin},
	})

	for _, p := range entity.AllPermissions {
		assert.True(t, gate.HasPermission(ctx, p), p)
	}
	assert.False(t, gate.HasRole(ctx, entity.RolePatient))
}

func TestActorFromContext_NilActor(t *testing.T) {
	ctx := WithActor(context.Background(), nil)

	_, ok := ActorFromContext(ctx)
	assert.False(t, ok)
}
