package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// itemRecord maps the inventory_items table. migrations/inventory owns the
// production DDL; the gorm tags mirror it for AutoMigrate.
type itemRecord struct {
	ID            uuid.UUID           `gorm:"column:item_id;type:uuid;primaryKey"`
	ItemName      string              `gorm:"column:item_name;size:255;not null"`
	Category      string              `gorm:"size:64;not null"`
	CurrentStock  int                 `gorm:"not null"`
	MinimumStock  int                 `gorm:"not null"`
	UnitType      string              `gorm:"size:50;not null"`
	PricePerUnit  decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	LastRestocked time.Time           `gorm:"not null"`
	Status        string              `gorm:"size:32;not null"`
	CreatedAt     time.Time           `gorm:"not null;index"`
	UpdatedAt     time.Time           `gorm:"not null"`
}

func (itemRecord) TableName() string { return "inventory_items" }

type auditRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID   string    `gorm:"size:255;not null"`
	ActivityType string    `gorm:"size:32;not null"`
	Description  string    `gorm:"type:text;not null"`
	EntityType   string    `gorm:"size:32;not null;index:idx_audit_logs_entity,priority:1"`
	EntityID     uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_logs_entity,priority:2"`
	IPAddress    string    `gorm:"size:64;not null"`
	UserAgent    string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (auditRecord) TableName() string { return "audit_logs" }

// AutoMigrate creates the inventory tables from the gorm models. Used by
// tests and local SQLite runs; PostgreSQL deployments use goose migrations.
func AutoMigrate(ctx context.Context, db *database.Database) error {
	return db.Conn(ctx).AutoMigrate(&itemRecord{}, &auditRecord{})
}

func toItemRecord(item *models.Item) *itemRecord {
	return &itemRecord{
		ID:            item.ID,
		ItemName:      item.Name.String(),
		Category:      item.Category.String(),
		CurrentStock:  item.CurrentStock,
		MinimumStock:  item.MinimumStock,
		UnitType:      item.UnitType,
		PricePerUnit:  item.PricePerUnit,
		LastRestocked: item.LastRestocked,
		Status:        item.Status.String(),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func (r *itemRecord) toModel() *models.Item {
	return &models.Item{
		ID:            r.ID,
		Name:          models.ItemName(r.ItemName),
		Category:      models.Category(r.Category),
		CurrentStock:  r.CurrentStock,
		MinimumStock:  r.MinimumStock,
		UnitType:      r.UnitType,
		PricePerUnit:  r.PricePerUnit,
		LastRestocked: r.LastRestocked.UTC(),
		Status:        models.StockStatus(r.Status),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func toAuditRecord(e *models.AuditEntry) *auditRecord {
	return &auditRecord{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		ActivityType: string(e.ActivityType),
		Description:  e.Description,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		CreatedAt:    e.CreatedAt,
	}
}

func (r *auditRecord) toModel() *models.AuditEntry {
	return &models.AuditEntry{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		ActivityType: models.ActivityType(r.ActivityType),
		Description:  r.Description,
		EntityType:   r.EntityType,
		EntityID:     r.EntityID,
		IPAddress:    r.IPAddress,
		UserAgent:    r.UserAgent,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
