package models

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/havenops/stockledger/services/inventory/domain"
)

// ItemName is a value object representing a valid item name.
// Surrounding whitespace is trimmed; the remainder is 1 to 255 characters
// with no control characters.
type ItemName string

const maxItemNameLength = 255

// NewItemName constructs a valid ItemName or returns an InvalidInput error for item_name.
func NewItemName(s string) (ItemName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.InvalidInput("item_name", "is required")
	}
	if utf8.RuneCountInString(s) > maxItemNameLength {
		return "", domain.InvalidInput("item_name", fmt.Sprintf("must not exceed %d characters", maxItemNameLength))
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", domain.InvalidInput("item_name", "must not contain control characters")
		}
	}
	return ItemName(s), nil
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}
