package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/services/inventory/domain"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// ItemRepository implements repositories.ItemRepository with gorm.
type ItemRepository struct {
	db *database.Database
}

// NewItemRepository returns an ItemRepository backed by the given database.
func NewItemRepository(db *database.Database) *ItemRepository {
	return &ItemRepository{db: db}
}

// List returns every item ordered by creation time, newest first.
func (r *ItemRepository) List(ctx context.Context) ([]*models.Item, error) {
	var rows []itemRecord
	if err := r.db.Conn(ctx).Order("created_at DESC").Order("item_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]*models.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].toModel()
	}
	return items, nil
}

// GetByID reads one item without locking. Returns ErrItemNotFound if absent.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var row itemRecord
	if err := r.db.Conn(ctx).Where("item_id = ?", id).Take(&row).Error; err != nil {
		return nil, translate("get item", err)
	}
	return row.toModel(), nil
}

// GetByIDForUpdate reads one item with SELECT ... FOR UPDATE. The lock is
// released when the transaction carried by ctx ends.
func (r *ItemRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var row itemRecord
	err := r.db.Conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, translate("lock item", err)
	}
	return row.toModel(), nil
}

// Insert persists a new item.
func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	if err := r.db.Conn(ctx).Create(toItemRecord(item)).Error; err != nil {
		return translate("insert item", err)
	}
	return nil
}

// Update writes every mutable field of item.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	res := r.db.Conn(ctx).
		Model(&itemRecord{}).
		Where("item_id = ?", item.ID).
		Updates(map[string]any{
			"item_name":      item.Name.String(),
			"category":       item.Category.String(),
			"current_stock":  item.CurrentStock,
			"minimum_stock":  item.MinimumStock,
			"unit_type":      item.UnitType,
			"price_per_unit": item.PricePerUnit,
			"status":         item.Status.String(),
			"updated_at":     item.UpdatedAt,
		})
	if res.Error != nil {
		return translate("update item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update item: %w", domain.ErrItemNotFound)
	}
	return nil
}

// Delete removes an item. Returns ErrItemNotFound when no row matched.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.Conn(ctx).Where("item_id = ?", id).Delete(&itemRecord{})
	if res.Error != nil {
		return translate("delete item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete item: %w", domain.ErrItemNotFound)
	}
	return nil
}

// translate maps driver errors onto domain sentinels.
func translate(op string, err error) error {
	switch {
	case database.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, domain.ErrItemNotFound)
	case database.IsLockTimeout(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBusy, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
