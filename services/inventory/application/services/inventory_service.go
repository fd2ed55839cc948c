package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/havenops/stockledger/pkg/logger"
	"github.com/havenops/stockledger/services/inventory/domain"
	"github.com/havenops/stockledger/services/inventory/domain/events"
	"github.com/havenops/stockledger/services/inventory/domain/models"
	"github.com/havenops/stockledger/services/inventory/domain/repositories"
	domainsvcs "github.com/havenops/stockledger/services/inventory/domain/services"
)

const instrumentationName = "github.com/havenops/stockledger/services/inventory"

// Operation names used in logs, spans and the inventory.operations metric.
const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// InventoryService is the single entry point for reading and mutating
// inventory. Every create, update and delete writes the record, one audit
// entry and one change event in a single transaction; a by-id read writes a
// VIEW audit entry in its own transaction. It holds no mutable state and is
// safe for concurrent use.
type InventoryService struct {
	tx      repositories.Transactor
	items   repositories.ItemRepository
	audit   repositories.AuditRepository
	changes repositories.ChangePublisher
	log     logger.Logger
	now     func() time.Time
	tracer  trace.Tracer
	ops     metric.Int64Counter
}

// Option customises an InventoryService.
type Option func(*InventoryService)

// WithClock replaces time.Now as the source of record and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *InventoryService) { s.now = now }
}

// NewInventoryService wires the gateway. Metrics and spans go to the global
// OTel providers configured by telemetry.Setup.
func NewInventoryService(
	tx repositories.Transactor,
	items repositories.ItemRepository,
	audit repositories.AuditRepository,
	changes repositories.ChangePublisher,
	log logger.Logger,
	opts ...Option,
) *InventoryService {
	s := &InventoryService{
		tx:      tx,
		items:   items,
		audit:   audit,
		changes: changes,
		log:     log,
		now:     time.Now,
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	ops, err := otel.Meter(instrumentationName).Int64Counter("inventory.operations",
		metric.WithDescription("Inventory operations by outcome"),
	)
	if err != nil {
		log.Warn("inventory.operations counter unavailable", "error", err)
		ops = noop.Int64Counter{}
	}
	s.ops = ops

	return s
}

// List returns every item, newest first. It requires no identity and is not audited.
func (s *InventoryService) List(ctx context.Context) (items []*models.Item, err error) {
	ctx, done := s.begin(ctx, opList, models.Actor{}, "")
	defer func() { err = done(err) }()

	items, err = s.items.List(ctx)
	return items, err
}

// GetByID returns one item and records that actor viewed it.
func (s *InventoryService) GetByID(ctx context.Context, actor models.Actor, rawID string) (item *models.Item, err error) {
	ctx, done := s.begin(ctx, opGet, actor, rawID)
	defer func() { err = done(err) }()

	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	id, err := domainsvcs.ParseItemID(rawID)
	if err != nil {
		return nil, err
	}

	item, err = s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		entry := models.NewAuditEntry(actor, models.ActivityView, item.ID, domainsvcs.DescribeView(item), s.now())
		return s.audit.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Create stores a new item with a derived status.
func (s *InventoryService) Create(ctx context.Context, actor models.Actor, in models.ItemInput) (item *models.Item, err error) {
	ctx, done := s.begin(ctx, opCreate, actor, "")
	defer func() { err = done(err) }()

	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	fields, err := domainsvcs.ValidateItemInput(in)
	if err != nil {
		return nil, err
	}

	item = models.NewItem(fields, s.now())
	s.noteStatusHint(ctx, in.StatusHint, item)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("inventory.item_id", item.ID.String()))

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.items.Insert(ctx, item); err != nil {
			return err
		}
		entry := models.NewAuditEntry(actor, models.ActivityAdd, item.ID, domainsvcs.DescribeCreate(item), item.CreatedAt)
		if err := s.audit.Append(ctx, entry); err != nil {
			return err
		}
		return s.changes.PublishItemChanged(ctx, events.NewItemChangedEvent(events.ChangeCreated, item, actor.EmployeeID, item.CreatedAt))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update overwrites an item's mutable fields under a row lock and derives
// status from the new stock count. last_restocked is not changed.
func (s *InventoryService) Update(ctx context.Context, actor models.Actor, rawID string, in models.ItemInput) (item *models.Item, err error) {
	ctx, done := s.begin(ctx, opUpdate, actor, rawID)
	defer func() { err = done(err) }()

	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	id, err := domainsvcs.ParseItemID(rawID)
	if err != nil {
		return nil, err
	}
	fields, err := domainsvcs.ValidateItemInput(in)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.items.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before := *current
		current.Apply(fields, s.now())
		s.noteStatusHint(ctx, in.StatusHint, current)

		if err := s.items.Update(ctx, current); err != nil {
			return err
		}
		entry := models.NewAuditEntry(actor, models.ActivityEdit, current.ID, domainsvcs.DescribeUpdate(&before, current), current.UpdatedAt)
		if err := s.audit.Append(ctx, entry); err != nil {
			return err
		}
		if err := s.changes.PublishItemChanged(ctx, events.NewItemChangedEvent(events.ChangeUpdated, current, actor.EmployeeID, current.UpdatedAt)); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item under a row lock.
func (s *InventoryService) Delete(ctx context.Context, actor models.Actor, rawID string) (err error) {
	ctx, done := s.begin(ctx, opDelete, actor, rawID)
	defer func() { err = done(err) }()

	if !actor.Authenticated() {
		return domain.ErrUnauthorized
	}
	id, err := domainsvcs.ParseItemID(rawID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.items.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.items.Delete(ctx, id); err != nil {
			return err
		}
		now := s.now()
		entry := models.NewAuditEntry(actor, models.ActivityDelete, id, domainsvcs.DescribeDelete(current), now)
		if err := s.audit.Append(ctx, entry); err != nil {
			return err
		}
		return s.changes.PublishItemChanged(ctx, events.NewItemChangedEvent(events.ChangeDeleted, current, actor.EmployeeID, now))
	})
}

// noteStatusHint logs a legacy client status that disagrees with the derived one.
func (s *InventoryService) noteStatusHint(ctx context.Context, hint string, item *models.Item) {
	if hint == "" || models.StockStatus(hint) == item.Status {
		return
	}
	_, known := models.ParseStockStatus(hint)
	s.log.DebugContext(ctx, "ignoring client-supplied status",
		"item_id", item.ID,
		"client_status", hint,
		"known_status", known,
		"derived_status", item.Status,
	)
}

// begin opens a span for op and returns the function that classifies,
// logs, counts and wraps the operation's final error.
func (s *InventoryService) begin(ctx context.Context, op string, actor models.Actor, rawID string) (context.Context, func(error) error) {
	ctx, span := s.tracer.Start(ctx, "inventory."+op, trace.WithAttributes(
		attribute.String("inventory.operation", op),
	))
	start := time.Now()

	return ctx, func(err error) error {
		defer span.End()

		if err != nil && isLockWait(err) && !errors.Is(err, domain.ErrBusy) {
			err = fmt.Errorf("%w: %w", domain.ErrBusy, err)
		}

		outcome := classify(err)
		s.ops.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))

		if err == nil {
			return nil
		}

		attrs := []any{
			"operation", op,
			"outcome", outcome,
			"employee_id", actor.EmployeeID,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err,
		}
		if rawID != "" {
			attrs = append(attrs, "item_id", rawID)
		}

		switch outcome {
		case outcomeInternal:
			span.RecordError(err)
			span.SetStatus(codes.Error, "inventory operation failed")
			s.log.ErrorContext(ctx, "inventory operation failed", attrs...)
		case outcomeBusy:
			s.log.WarnContext(ctx, "inventory item busy", attrs...)
		default:
			s.log.DebugContext(ctx, "inventory operation rejected", attrs...)
		}

		return fmt.Errorf("%s item: %w", op, err)
	}
}

const (
	outcomeOK           = "ok"
	outcomeUnauthorized = "unauthorized"
	outcomeInvalid      = "invalid_input"
	outcomeNotFound     = "not_found"
	outcomeBusy         = "busy"
	outcomeInternal     = "internal"
)

func classify(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrUnauthorized):
		return outcomeUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		return outcomeInvalid
	case errors.Is(err, domain.ErrItemNotFound):
		return outcomeNotFound
	case errors.Is(err, domain.ErrBusy):
		return outcomeBusy
	default:
		return outcomeInternal
	}
}

// isLockWait reports a request deadline that expired inside the transaction.
func isLockWait(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
