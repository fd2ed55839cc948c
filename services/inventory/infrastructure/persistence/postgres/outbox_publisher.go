package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/pkg/events"
	domainevents "github.com/havenops/stockledger/services/inventory/domain/events"
)

var errNoTransaction = errors.New("outbox: publish requires an open transaction")

// OutboxPublisher records item change events in the watermill outbox tables
// on the same transaction as the mutation, so an event exists if and only if
// the mutation committed.
type OutboxPublisher struct {
	db  *database.Database
	bus *events.EventBus
}

// NewOutboxPublisher returns an OutboxPublisher. A nil bus disables publishing.
func NewOutboxPublisher(db *database.Database, bus *events.EventBus) *OutboxPublisher {
	return &OutboxPublisher{db: db, bus: bus}
}

// PublishItemChanged enqueues evt on the transaction carried by ctx.
func (p *OutboxPublisher) PublishItemChanged(ctx context.Context, evt domainevents.ItemChangedEvent) error {
	if p.bus == nil {
		return nil
	}
	tx, ok := p.db.SQLTx(ctx)
	if !ok {
		return errNoTransaction
	}

	msg, err := events.NewJSONMessage(evt, map[string]string{
		"event_id":      evt.EventID.String(),
		"event_version": strconv.Itoa(evt.Version),
		"change":        string(evt.Change),
	})
	if err != nil {
		return fmt.Errorf("publish item changed: %w", err)
	}
	if err := p.bus.PublishTx(ctx, tx, domainevents.TopicItemChanged, msg); err != nil {
		return fmt.Errorf("publish item changed: %w", err)
	}
	return nil
}
