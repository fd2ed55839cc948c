// Package services contains stateless domain services for the inventory bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond the domain layer.
package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/havenops/stockledger/services/inventory/domain"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

const maxUnitTypeLength = 50

// ParseItemID validates a caller-supplied item_id.
func ParseItemID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domain.InvalidInput("item_id", "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.InvalidInput("item_id", "must be a valid UUID")
	}
	return id, nil
}

// ValidateItemInput checks every field of in against the inventory rules and
// returns the validated fields. The first failing field is reported.
//
// Rules:
//   - item_name: trimmed, 1 to 255 characters
//   - category: one of models.Categories()
//   - current_stock, minimum_stock: >= 0
//   - unit_type: trimmed, 1 to 50 characters
//   - price_per_unit: optional, >= 0 when present
//
// StatusHint is not validated; status is always derived from current_stock.
func ValidateItemInput(in models.ItemInput) (models.ItemFields, error) {
	name, err := models.NewItemName(in.Name)
	if err != nil {
		return models.ItemFields{}, err
	}

	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return models.ItemFields{}, err
	}

	if in.CurrentStock < 0 {
		return models.ItemFields{}, domain.InvalidInput("current_stock", "must be greater than or equal to 0")
	}
	if in.MinimumStock < 0 {
		return models.ItemFields{}, domain.InvalidInput("minimum_stock", "must be greater than or equal to 0")
	}

	unit := strings.TrimSpace(in.UnitType)
	if unit == "" {
		return models.ItemFields{}, domain.InvalidInput("unit_type", "is required")
	}
	if utf8.RuneCountInString(unit) > maxUnitTypeLength {
		return models.ItemFields{}, domain.InvalidInput("unit_type", fmt.Sprintf("must not exceed %d characters", maxUnitTypeLength))
	}

	if in.PricePerUnit.Valid && in.PricePerUnit.Decimal.IsNegative() {
		return models.ItemFields{}, domain.InvalidInput("price_per_unit", "must be greater than or equal to 0")
	}

	return models.ItemFields{
		Name:         name,
		Category:     category,
		CurrentStock: in.CurrentStock,
		MinimumStock: in.MinimumStock,
		UnitType:     unit,
		PricePerUnit: in.PricePerUnit,
	}, nil
}
