package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/havenops/stockledger/pkg/config"
	"github.com/havenops/stockledger/pkg/logger"
)

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, BaseDelay: time.Millisecond}
}

func TestRetryPolicy_Run(t *testing.T) {
	tests := []struct {
		name      string
		policy    RetryPolicy
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{"success on first attempt", fastPolicy(3), 0, 1, false},
		{"success after retries", fastPolicy(3), 2, 3, false},
		{"exhausts attempts", fastPolicy(3), 10, 3, true},
		{"single attempt", fastPolicy(1), 10, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			handler := func(_ context.Context, _ *message.Message) error {
				calls++
				if calls <= tt.failFirst {
					return errors.New("redis unavailable")
				}
				return nil
			}
			err := tt.policy.run(context.Background(), message.NewMessage("id", nil), handler, nopLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryPolicy_RunWrapsLastError(t *testing.T) {
	cause := errors.New("redis unavailable")
	err := fastPolicy(2).run(context.Background(), message.NewMessage("id", nil),
		func(context.Context, *message.Message) error { return cause }, nopLogger())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

// A cancelled context stops retrying after the first failed call.
func TestRetryPolicy_RunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("error")
	}
	err := RetryPolicy{Attempts: 3, BaseDelay: time.Second}.run(ctx, message.NewMessage("id", nil), handler, nopLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before context cancel, got %d", calls)
	}
}

func TestStartForwarder_NonForwarderMode(t *testing.T) {
	bus := &EventBus{}
	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error for non-forwarder EventBus")
	}
}

func TestOptions(t *testing.T) {
	bus := &EventBus{retry: DefaultRetryPolicy}
	for _, opt := range []Option{
		WithForwarder(),
		WithRetryPolicy(RetryPolicy{Attempts: 5, BaseDelay: 10 * time.Millisecond}),
		WithPollInterval(250 * time.Millisecond),
	} {
		opt(bus)
	}
	if !bus.useForwarder {
		t.Error("WithForwarder did not enable forwarder mode")
	}
	if bus.retry.Attempts != 5 || bus.retry.BaseDelay != 10*time.Millisecond {
		t.Errorf("retry = %+v", bus.retry)
	}
	if bus.pollInterval != 250*time.Millisecond {
		t.Errorf("pollInterval = %v", bus.pollInterval)
	}
}

// consume must parent its span on the trace carried in message metadata.
func TestConsume_ContinuesPublisherTrace(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	pubCtx, pubSpan := otel.Tracer("test").Start(context.Background(), "inventory.update")
	msg := message.NewMessage("m-1", nil)
	injectTrace(pubCtx, []*message.Message{msg})
	pubSpan.End()

	bus := &EventBus{
		log:           nopLogger(),
		consumerGroup: "stockledger-consumer",
		retry:         fastPolicy(1),
		tracer:        otel.Tracer(tracerName),
	}

	var got trace.SpanContext
	err := bus.consume(context.Background(), "inventory.item.changed", msg, func(ctx context.Context, _ *message.Message) error {
		got = trace.SpanContextFromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.TraceID() != pubSpan.SpanContext().TraceID() {
		t.Errorf("trace ID = %s, want %s", got.TraceID(), pubSpan.SpanContext().TraceID())
	}
	if got.SpanID() == pubSpan.SpanContext().SpanID() {
		t.Error("handler should run in a new consumer span")
	}
}

func TestInjectExtractTrace(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish-span")
	defer span.End()

	msg := message.NewMessage("id", nil)
	injectTrace(ctx, []*message.Message{msg})

	got := trace.SpanContextFromContext(extractTrace(context.Background(), msg))
	if !got.IsValid() {
		t.Fatal("extracted span context is not valid")
	}
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Errorf("trace ID mismatch: want %s, got %s", span.SpanContext().TraceID(), got.TraceID())
	}
}

func TestNewJSONMessage(t *testing.T) {
	payload := struct {
		ItemID string `json:"item_id"`
		Stock  int    `json:"current_stock"`
	}{ItemID: "abc", Stock: 3}

	msg, err := NewJSONMessage(payload, map[string]string{"event_version": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.UUID == "" {
		t.Fatal("expected message UUID")
	}
	if got := msg.Metadata.Get("event_version"); got != "1" {
		t.Errorf("metadata event_version: got %q", got)
	}
	if string(msg.Payload) != `{"item_id":"abc","current_stock":3}` {
		t.Errorf("payload: got %s", msg.Payload)
	}
}

func TestNewJSONMessage_UnmarshalablePayload(t *testing.T) {
	if _, err := NewJSONMessage(make(chan int), nil); err == nil {
		t.Fatal("expected marshal error")
	}
}

// PublishTx and Publish stamp the caller's trace on every message.
func TestInjectTrace(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "mutation")
	defer span.End()

	msgs := []*message.Message{message.NewMessage("a", nil), message.NewMessage("b", nil)}
	injectTrace(ctx, msgs)

	for _, msg := range msgs {
		if msg.Metadata.Get("traceparent") == "" {
			t.Fatalf("message %s missing traceparent", msg.UUID)
		}
	}
}
