// Package subscribers reacts to inventory change events off the request path.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/havenops/stockledger/pkg/logger"
	"github.com/havenops/stockledger/services/inventory/domain/events"
)

// AlertLedger remembers which items already raised a reorder alert.
type AlertLedger interface {
	MarkAlerted(ctx context.Context, itemID uuid.UUID, stock int) (first bool, err error)
	Clear(ctx context.Context, itemID uuid.UUID) error
}

// ReorderAlerter raises one alert per item when its stock falls to or below
// the minimum, and re-arms once stock recovers or the item is deleted.
type ReorderAlerter struct {
	ledger AlertLedger
	log    logger.Logger
	alerts metric.Int64Counter
}

// NewReorderAlerter returns an alerter recording alerts in ledger.
func NewReorderAlerter(ledger AlertLedger, log logger.Logger) *ReorderAlerter {
	alerts, err := otel.Meter("github.com/havenops/stockledger/services/inventory").Int64Counter(
		"inventory.reorder_alerts",
		metric.WithDescription("Reorder alerts raised, by category"),
	)
	if err != nil {
		log.Warn("inventory.reorder_alerts counter unavailable", "error", err)
		alerts = noop.Int64Counter{}
	}
	return &ReorderAlerter{ledger: ledger, log: log, alerts: alerts}
}

// Handle processes one inventory.item.changed message. Undecodable or newer
// payloads are logged and acknowledged; ledger failures are returned so the
// bus retries.
func (a *ReorderAlerter) Handle(ctx context.Context, msg *message.Message) error {
	var evt events.ItemChangedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		a.log.ErrorContext(ctx, "dropping undecodable item change", "message_uuid", msg.UUID, "error", err)
		return nil
	}
	if evt.Version > events.ItemChangedEventVersion {
		a.log.WarnContext(ctx, "skipping item change with newer schema",
			"message_uuid", msg.UUID,
			"version", evt.Version,
		)
		return nil
	}

	if !evt.BelowReorderPoint() {
		if err := a.ledger.Clear(ctx, evt.ItemID); err != nil {
			return fmt.Errorf("clear reorder alert for %s: %w", evt.ItemID, err)
		}
		return nil
	}

	first, err := a.ledger.MarkAlerted(ctx, evt.ItemID, evt.CurrentStock)
	if err != nil {
		return fmt.Errorf("mark reorder alert for %s: %w", evt.ItemID, err)
	}
	if !first {
		return nil
	}

	a.alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("category", evt.Category)))
	a.log.WarnContext(ctx, "reorder needed",
		"item_id", evt.ItemID,
		"item_name", evt.Name,
		"category", evt.Category,
		"current_stock", evt.CurrentStock,
		"minimum_stock", evt.MinimumStock,
		"unit_type", evt.UnitType,
		"status", evt.Status,
		"changed_by", evt.EmployeeID,
	)
	return nil
}
