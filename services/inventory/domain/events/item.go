package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// TopicItemChanged is the Watermill topic published after every committed
// create, update, or delete of an inventory item.
const TopicItemChanged = "inventory.item.changed"

// ItemChangedEventVersion is the current payload schema version.
const ItemChangedEventVersion = 1

// ChangeKind says which mutation produced the event.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ItemChangedEvent carries the item's state as of the committed mutation.
// For ChangeDeleted it is the state just before removal.
type ItemChangedEvent struct {
	EventID      uuid.UUID          `json:"event_id"` // Unique publish-time identifier for deduplication
	Version      int                `json:"version"`  // Schema version; increment on breaking changes
	Change       ChangeKind         `json:"change"`
	ItemID       uuid.UUID          `json:"item_id"`
	Name         string             `json:"item_name"`
	Category     string             `json:"category"`
	CurrentStock int                `json:"current_stock"`
	MinimumStock int                `json:"minimum_stock"`
	UnitType     string             `json:"unit_type"`
	Status       models.StockStatus `json:"status"`
	EmployeeID   string             `json:"employee_id"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

// NewItemChangedEvent snapshots item for publication.
func NewItemChangedEvent(change ChangeKind, item *models.Item, employeeID string, now time.Time) ItemChangedEvent {
	return ItemChangedEvent{
		EventID:      uuid.New(),
		Version:      ItemChangedEventVersion,
		Change:       change,
		ItemID:       item.ID,
		Name:         item.Name.String(),
		Category:     item.Category.String(),
		CurrentStock: item.CurrentStock,
		MinimumStock: item.MinimumStock,
		UnitType:     item.UnitType,
		Status:       item.Status,
		EmployeeID:   employeeID,
		OccurredAt:   now.UTC(),
	}
}

// BelowReorderPoint reports whether a live item has reached its minimum stock.
func (e ItemChangedEvent) BelowReorderPoint() bool {
	return e.Change != ChangeDeleted && e.CurrentStock <= e.MinimumStock
}
