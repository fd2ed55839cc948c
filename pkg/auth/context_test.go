package auth

import (
	"context"
	"errors"
	"testing"
)

func TestWithEmployeeID_EmployeeIDFromCtx(t *testing.T) {
	ctx := WithEmployeeID(context.Background(), "emp-7")

	got, err := EmployeeIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "emp-7" {
		t.Fatalf("expected emp-7, got %q", got)
	}
}

func TestEmployeeIDFromCtx_EmptyContext(t *testing.T) {
	_, err := EmployeeIDFromCtx(context.Background())
	if !errors.Is(err, ErrNoEmployee) {
		t.Fatalf("expected ErrNoEmployee, got %v", err)
	}
}

func TestEmployeeIDFromCtx_EmptyValue(t *testing.T) {
	_, err := EmployeeIDFromCtx(WithEmployeeID(context.Background(), ""))
	if !errors.Is(err, ErrNoEmployee) {
		t.Fatalf("expected ErrNoEmployee, got %v", err)
	}
}
