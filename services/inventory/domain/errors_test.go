package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	all := []error{ErrItemNotFound, ErrInvalidInput, ErrUnauthorized, ErrBusy}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v must not match %v", a, b)
			}
		}
	}
}

func TestInvalidInputError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("create item: %w", InvalidInput("category", "must be one of the allowed values"))

	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("errors.Is must match ErrInvalidInput through the wrapper")
	}
	if errors.Is(err, ErrItemNotFound) {
		t.Fatal("invalid input must not match ErrItemNotFound")
	}

	field, reason, ok := InvalidField(err)
	if !ok {
		t.Fatal("expected InvalidField to find the field")
	}
	if field != "category" {
		t.Errorf("field: got %q, want %q", field, "category")
	}
	if reason != "must be one of the allowed values" {
		t.Errorf("reason: got %q", reason)
	}
}

func TestInvalidInputError_Message(t *testing.T) {
	err := InvalidInput("current_stock", "must be greater than or equal to 0")
	if err.Error() != "current_stock must be greater than or equal to 0" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestInvalidField_OtherErrors(t *testing.T) {
	if _, _, ok := InvalidField(ErrItemNotFound); ok {
		t.Fatal("expected no field for a non-validation error")
	}
}
