package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// AuditRepository appends to audit_logs. It has no update or delete path.
type AuditRepository struct {
	db *database.Database
}

// NewAuditRepository returns an AuditRepository backed by the given database.
func NewAuditRepository(db *database.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts entry on the transaction carried by ctx.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	if err := r.db.Conn(ctx).Create(toAuditRecord(entry)).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListForItem returns the entries recorded against one item, oldest first.
func (r *AuditRepository) ListForItem(ctx context.Context, itemID uuid.UUID) ([]*models.AuditEntry, error) {
	var rows []auditRecord
	err := r.db.Conn(ctx).
		Where("entity_type = ? AND entity_id = ?", models.EntityTypeInventory, itemID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	entries := make([]*models.AuditEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toModel()
	}
	return entries, nil
}

// Count returns the total number of inventory audit entries.
func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Conn(ctx).Model(&auditRecord{}).Where("entity_type = ?", models.EntityTypeInventory).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}
