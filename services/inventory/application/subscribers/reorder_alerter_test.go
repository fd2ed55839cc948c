package subscribers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenops/stockledger/pkg/config"
	pkgevents "github.com/havenops/stockledger/pkg/events"
	"github.com/havenops/stockledger/pkg/logger"
	"github.com/havenops/stockledger/services/inventory/domain/events"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

type memoryLedger struct {
	mu      sync.Mutex
	marked  map[uuid.UUID]int
	alerted []uuid.UUID
	err     error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{marked: map[uuid.UUID]int{}}
}

func (l *memoryLedger) MarkAlerted(_ context.Context, id uuid.UUID, stock int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if _, ok := l.marked[id]; ok {
		return false, nil
	}
	l.marked[id] = stock
	l.alerted = append(l.alerted, id)
	return true, nil
}

func (l *memoryLedger) Clear(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	delete(l.marked, id)
	return nil
}

func changeMessage(t *testing.T, change events.ChangeKind, id uuid.UUID, stock, minimum int) *message.Message {
	t.Helper()
	item := &models.Item{
		ID:           id,
		Name:         "Shampoo",
		Category:     models.CategoryGuestAmenities,
		CurrentStock: stock,
		MinimumStock: minimum,
		UnitType:     "bottles",
		Status:       models.DeriveStatus(stock),
	}
	msg, err := pkgevents.NewJSONMessage(events.NewItemChangedEvent(change, item, "emp-1", time.Now()), nil)
	require.NoError(t, err)
	return msg
}

func newAlerter(ledger AlertLedger) *ReorderAlerter {
	return NewReorderAlerter(ledger, logger.New(&config.Config{LogLevel: "error"}))
}

func TestReorderAlerter_AlertsOncePerDip(t *testing.T) {
	ledger := newMemoryLedger()
	a := newAlerter(ledger)
	ctx := context.Background()
	id := uuid.New()

	steps := []struct {
		change  events.ChangeKind
		stock   int
		alerts  int
		pending bool
	}{
		{events.ChangeCreated, 20, 0, false},
		{events.ChangeUpdated, 5, 1, true},
		{events.ChangeUpdated, 3, 1, true},
		{events.ChangeUpdated, 5, 1, true}, // equal to minimum still counts as low
		{events.ChangeUpdated, 40, 1, false},
		{events.ChangeUpdated, 0, 2, true},
		{events.ChangeDeleted, 0, 2, false},
	}
	for i, s := range steps {
		require.NoError(t, a.Handle(ctx, changeMessage(t, s.change, id, s.stock, 5)), "step %d", i)
		assert.Len(t, ledger.alerted, s.alerts, "step %d", i)
		_, pending := ledger.marked[id]
		assert.Equal(t, s.pending, pending, "step %d", i)
	}
}

func TestReorderAlerter_LedgerErrorRetries(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.err = errors.New("redis down")

	err := newAlerter(ledger).Handle(context.Background(), changeMessage(t, events.ChangeUpdated, uuid.New(), 1, 5))
	assert.ErrorIs(t, err, ledger.err)
}

func TestReorderAlerter_AcksPoisonMessages(t *testing.T) {
	ledger := newMemoryLedger()
	a := newAlerter(ledger)

	garbage := message.NewMessage(uuid.NewString(), []byte("{not json"))
	assert.NoError(t, a.Handle(context.Background(), garbage))

	future, err := pkgevents.NewJSONMessage(map[string]any{
		"version":       events.ItemChangedEventVersion + 1,
		"change":        "updated",
		"item_id":       uuid.NewString(),
		"current_stock": 0,
		"minimum_stock": 5,
	}, nil)
	require.NoError(t, err)
	assert.NoError(t, a.Handle(context.Background(), future))
	assert.Empty(t, ledger.alerted)
}
