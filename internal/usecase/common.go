package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"clinic-management/internal/service"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ValidationError carries every failing field of a request with its message
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(fields map[string]string) *ValidationError {
	e := &ValidationError{Fields: map[string]string{}}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already failed
func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Err returns nil when no field failed
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// currentActor returns the authenticated actor of the request
func currentActor(ctx context.Context) (*service.Actor, error) {
	actor, ok := service.ActorFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return actor, nil
}

// requireRole returns the actor when it holds role, ErrForbidden otherwise
func requireRole(ctx context.Context, gate service.AccessGate, role string) (*service.Actor, error) {
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	if !gate.HasRole(ctx, role) {
		return nil, ErrForbidden
	}
	return actor, nil
}

// requireRoleWith returns the actor when it holds both role and permission
func requireRoleWith(ctx context.Context, gate service.AccessGate, role, permission string) (*service.Actor, error) {
	actor, err := requireRole(ctx, gate, role)
	if err != nil {
		return nil, err
	}
	if !gate.HasPermission(ctx, permission) {
		return nil, ErrForbidden
	}
	return actor, nil
}

// requirePermission returns the actor when it holds permission, ErrForbidden otherwise
func requirePermission(ctx context.Context, gate service.AccessGate, permission string) (*service.Actor, error) {
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	if !gate.HasPermission(ctx, permission) {
		return nil, ErrForbidden
	}
	return actor, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation
// on a constraint containing constraintName
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation &&
			strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// on a constraint containing constraintName
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation &&
			strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return false
}
