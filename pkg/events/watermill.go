// Package events is the transactional outbox and subscriber side of
// inventory change events, built on Watermill's PostgreSQL transport.
//
// Delivery semantics:
//   - Subscribers sharing a consumer group split the stream; each message is
//     handled by one instance of the group.
//   - With WithForwarder, publishes land in an internal queue table inside the
//     caller's transaction and a forwarder daemon moves them to their topic
//     after commit.
//
// Handlers must be idempotent. A failed handler is retried with exponential
// backoff; once the retry policy is exhausted the message is Nacked and
// redelivered later.
//
// The caller's trace context travels in message metadata and is restored
// as the parent of a consumer span around each handler call.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/havenops/stockledger/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second
	errBuffer       = 100
	forwarderTopic  = "_forwarder_queue"
	tracerName      = "github.com/havenops/stockledger/pkg/events"
)

// Handler processes one message. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// RetryPolicy bounds how often a failing handler is called for one delivery.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy tries three times, waiting 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// Option customises an EventBus.
type Option func(*EventBus)

// WithForwarder routes every publish through the forwarder queue. Call
// StartForwarder once the bus is built.
func WithForwarder() Option {
	return func(q *EventBus) { q.useForwarder = true }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(q *EventBus) { q.retry = p }
}

// WithPollInterval sets how often idle subscribers query for new rows.
func WithPollInterval(d time.Duration) Option {
	return func(q *EventBus) { q.pollInterval = d }
}

// EventBus publishes and consumes messages stored in PostgreSQL. Concurrent
// subscribers in a group claim rows with FOR UPDATE SKIP LOCKED.
type EventBus struct {
	db            *sql.DB
	log           logger.Logger
	wlog          watermill.LoggerAdapter
	consumerGroup string
	schema        watermillsql.DefaultPostgreSQLSchema
	offsets       watermillsql.DefaultPostgreSQLOffsetsAdapter
	retry         RetryPolicy
	pollInterval  time.Duration
	useForwarder  bool
	tracer        trace.Tracer

	publisher  message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	wg         sync.WaitGroup
}

// NewEventBus builds a bus on db, normally the repositories' pool. The bus
// never closes db. Schema tables are created on first use.
func NewEventBus(db *sql.DB, consumerGroup string, log logger.Logger, opts ...Option) (*EventBus, error) {
	q := &EventBus{
		db:            db,
		log:           log,
		wlog:          &slogAdapter{log: log},
		consumerGroup: consumerGroup,
		retry:         DefaultRetryPolicy,
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.retry.Attempts < 1 {
		q.retry.Attempts = 1
	}

	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        q.schema,
		AutoInitializeSchema: true,
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	q.publisher = q.envelope(pub)

	sub, err := q.newSubscriber(consumerGroup)
	if err != nil {
		_ = pub.Close()
		return nil, err
	}
	q.subscriber = sub

	return q, nil
}

// NewEventBusWithForwarder is NewEventBus with WithForwarder applied.
func NewEventBusWithForwarder(db *sql.DB, consumerGroup string, log logger.Logger, opts ...Option) (*EventBus, error) {
	return NewEventBus(db, consumerGroup, log, append(opts, WithForwarder())...)
}

// envelope routes pub through the forwarder queue in forwarder mode.
func (q *EventBus) envelope(pub message.Publisher) message.Publisher {
	if !q.useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

func (q *EventBus) newSubscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    q.schema,
		OffsetsAdapter:   q.offsets,
		InitializeSchema: true,
		ConsumerGroup:    group,
		PollInterval:     q.pollInterval,
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber for %s: %w", group, err)
	}
	return sub, nil
}

// StartForwarder runs the daemon that moves committed messages from the
// forwarder queue to their topics. It returns once the daemon is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return errors.New("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	fwdSub, err := q.newSubscriber(q.consumerGroup + "-forwarder")
	if err != nil {
		return err
	}
	targetPub, err := watermillsql.NewPublisher(q.db, watermillsql.PublisherConfig{
		SchemaAdapter:        q.schema,
		AutoInitializeSchema: true,
	}, q.wlog)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, q.wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started", "consumer_group", q.consumerGroup+"-forwarder")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// PublishTx writes msgs to topic inside tx. Subscribers see them only if tx
// commits. Schema tables must already exist, which NewEventBus guarantees.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter:        q.schema,
		AutoInitializeSchema: false,
	}, q.wlog)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	injectTrace(ctx, msgs)
	if err := q.envelope(pub).Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

// Publish writes msgs to topic outside any transaction.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	injectTrace(ctx, msgs)
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// NewJSONMessage marshals payload into a message with a fresh UUID and the
// given metadata.
func NewJSONMessage(payload any, metadata map[string]string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	for k, v := range metadata {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

func injectTrace(ctx context.Context, msgs []*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
}

// Subscribe consumes topic in the bus's consumer group until ctx ends or the
// bus closes. Handler failures that outlast the retry policy Nack the
// message and are sent on the returned channel, which callers must drain:
//
//	errCh, err := bus.Subscribe(ctx, topic, handler)
//	go func() { for err := range errCh { log.ErrorContext(ctx, "subscriber error", "error", err) } }()
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			if err := q.consume(ctx, topic, msg, handler); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(ctx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

// consume runs handler under a consumer span parented on the publisher's trace.
func (q *EventBus) consume(ctx context.Context, topic string, msg *message.Message, handler Handler) error {
	ctx, span := q.tracer.Start(extractTrace(ctx, msg), "events.consume "+topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "watermill-sql"),
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.message.id", msg.UUID),
			attribute.String("messaging.consumer.group.name", q.consumerGroup),
		),
	)
	defer span.End()

	err := q.retry.run(ctx, msg, handler, q.log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
	}
	return err
}

// run calls handler until it succeeds, the attempts run out, or ctx ends.
// The delay doubles after every failure.
func (p RetryPolicy) run(ctx context.Context, msg *message.Message, handler Handler, log logger.Logger) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == p.Attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"message_id", msg.UUID,
			"attempt", attempt,
			"max_attempts", p.Attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", p.Attempts, err)
}

// Ping checks the bus's database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to 30s for in-flight
// handlers, then closes the publisher. The *sql.DB stays open.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return nil
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter. Watermill's
// info chatter is demoted to debug.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}

func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
