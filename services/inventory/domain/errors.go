package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the item_id does not resolve to a stored item.
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrInvalidInput indicates a missing, mistyped, or out-of-vocabulary field.
	// Concrete failures are *InvalidInputError values that unwrap to it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the operation needs a caller identity and none was resolved.
	ErrUnauthorized = errors.New("authentication required")

	// ErrBusy indicates the item's row lock could not be acquired in time.
	// Callers may retry.
	ErrBusy = errors.New("inventory item is being modified, retry shortly")
)

// InvalidInputError names the field that failed validation and why.
type InvalidInputError struct {
	Field  string
	Reason string
}

// InvalidInput returns an *InvalidInputError for field.
func InvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidField extracts the offending field name from err, if any.
func InvalidField(err error) (field, reason string, ok bool) {
	var ie *InvalidInputError
	if !errors.As(err, &ie) {
		return "", "", false
	}
	return ie.Field, ie.Reason, true
}
