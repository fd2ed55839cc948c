package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/havenops/stockledger/services/inventory/domain/events"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// Every method runs on the transaction carried by ctx when the caller opened
// one through Transactor.WithTx, and on a pooled connection otherwise.

// ItemRepository is the persistence interface for the stock ledger.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	// List returns every item, newest first.
	List(ctx context.Context) ([]*models.Item, error)

	// GetByID is a plain read. Returns domain.ErrItemNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// GetByIDForUpdate reads the item and holds an exclusive row lock on it
	// until the surrounding transaction ends. Returns domain.ErrBusy if the
	// lock is not granted in time.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error)

	Insert(ctx context.Context, item *models.Item) error

	// Update overwrites all mutable fields and updated_at.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes the row. Returns domain.ErrItemNotFound if nothing was deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditRepository appends audit entries. Entries are never changed or removed.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
}

// ChangePublisher records an item change event in the transaction carried by ctx.
type ChangePublisher interface {
	PublishItemChanged(ctx context.Context, evt events.ItemChangedEvent) error
}

// Transactor scopes a unit of work.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
