package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const employeeIDKey contextKey = "employee_id"

// ErrNoEmployee is returned when no employee ID exists in the request context.
var ErrNoEmployee = errors.New("employee_id not found in context")

// EmployeeIDFromCtx extracts the authenticated employee ID from the request context.
func EmployeeIDFromCtx(ctx context.Context) (string, error) {
	id, ok := ctx.Value(employeeIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoEmployee
	}
	return id, nil
}

// WithEmployeeID returns a new context with the given employee ID attached.
func WithEmployeeID(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, employeeIDKey, employeeID)
}
