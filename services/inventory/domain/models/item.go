package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stock record for one consumable kept at a haven.
type Item struct {
	ID            uuid.UUID
	Name          ItemName
	Category      Category
	CurrentStock  int
	MinimumStock  int // reorder threshold, informational only
	UnitType      string
	PricePerUnit  decimal.NullDecimal
	LastRestocked time.Time
	Status        StockStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemInput is the caller-supplied shape for create and update before validation.
type ItemInput struct {
	Name         string
	Category     string
	CurrentStock int
	MinimumStock int
	UnitType     string
	PricePerUnit decimal.NullDecimal
	// StatusHint is accepted from legacy clients and never persisted.
	StatusHint string
}

// ItemFields is a validated ItemInput: the mutable fields of an Item.
type ItemFields struct {
	Name         ItemName
	Category     Category
	CurrentStock int
	MinimumStock int
	UnitType     string
	PricePerUnit decimal.NullDecimal
}

// NewItem builds a fresh Item with a generated ID. last_restocked, created_at
// and updated_at all take now.
func NewItem(f ItemFields, now time.Time) *Item {
	now = now.UTC()
	item := &Item{
		ID:            uuid.New(),
		LastRestocked: now,
		CreatedAt:     now,
	}
	item.Apply(f, now)
	return item
}

// Apply overwrites every mutable field and recomputes Status from the new
// stock count. LastRestocked is left as it was.
func (i *Item) Apply(f ItemFields, now time.Time) {
	i.Name = f.Name
	i.Category = f.Category
	i.CurrentStock = f.CurrentStock
	i.MinimumStock = f.MinimumStock
	i.UnitType = f.UnitType
	i.PricePerUnit = f.PricePerUnit
	i.Status = DeriveStatus(f.CurrentStock)
	i.UpdatedAt = now.UTC()
}

// NeedsReorder reports whether stock has fallen to the reorder threshold.
func (i *Item) NeedsReorder() bool {
	return i.CurrentStock <= i.MinimumStock
}
