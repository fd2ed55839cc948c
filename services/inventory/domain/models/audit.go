package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an audit entry.
type ActivityType string

const (
	ActivityView   ActivityType = "VIEW_INVENTORY"
	ActivityAdd    ActivityType = "ADD_INVENTORY"
	ActivityEdit   ActivityType = "EDIT_INVENTORY"
	ActivityDelete ActivityType = "DELETE_INVENTORY"
)

// EntityTypeInventory is the entity_type stamped on every entry this service writes.
const EntityTypeInventory = "inventory"

// Stored lengths, in characters.
const (
	MaxUserAgentLength = 255
	MaxIPAddressLength = 64
)

const unknownOrigin = "unknown"

// Actor is who performed an operation and from where. IPAddress and
// UserAgent are attribution only.
type Actor struct {
	EmployeeID string
	IPAddress  string
	UserAgent  string
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.EmployeeID != ""
}

// AuditEntry is an immutable record of one operation on one item.
type AuditEntry struct {
	ID           uuid.UUID
	EmployeeID   string
	ActivityType ActivityType
	Description  string
	EntityType   string
	EntityID     uuid.UUID
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}

// NewAuditEntry stamps an entry for itemID. Empty origin fields become
// "unknown"; the origin fields are cut to their stored lengths.
func NewAuditEntry(actor Actor, activity ActivityType, itemID uuid.UUID, description string, now time.Time) *AuditEntry {
	return &AuditEntry{
		ID:           uuid.New(),
		EmployeeID:   actor.EmployeeID,
		ActivityType: activity,
		Description:  description,
		EntityType:   EntityTypeInventory,
		EntityID:     itemID,
		IPAddress:    truncateRunes(orUnknown(actor.IPAddress), MaxIPAddressLength),
		UserAgent:    truncateRunes(orUnknown(actor.UserAgent), MaxUserAgentLength),
		CreatedAt:    now.UTC(),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownOrigin
	}
	return s
}

func truncateRunes(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
