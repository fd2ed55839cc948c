package services

import (
	"github.com/havenops/stockledger/pkg/app"
	"github.com/havenops/stockledger/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Inventory *InventoryService
}

// New wires all inventory application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	return &Services{
		Inventory: NewInventoryService(
			a.Db,
			postgres.NewItemRepository(a.Db),
			postgres.NewAuditRepository(a.Db),
			postgres.NewOutboxPublisher(a.Db, a.EventBus),
			a.Logger,
		),
	}
}
