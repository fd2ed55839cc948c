package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultReorderAlertTTL re-arms an alert for an item that stays low.
	DefaultReorderAlertTTL = 24 * time.Hour

	reorderKeyPrefix = "stockledger:reorder"
)

// ReorderAlerts remembers which items have already raised a reorder alert.
// Key format: "stockledger:reorder:{itemID}", value: stock at alert time.
type ReorderAlerts struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewReorderAlerts creates a ledger on r. A non-positive ttl uses
// DefaultReorderAlertTTL.
func NewReorderAlerts(r *RedisClient, ttl time.Duration) *ReorderAlerts {
	if ttl <= 0 {
		ttl = DefaultReorderAlertTTL
	}
	return &ReorderAlerts{client: r.Client(), ttl: ttl}
}

// MarkAlerted records an alert for itemID and reports whether this call was
// the first since the marker was last cleared or expired.
func (a *ReorderAlerts) MarkAlerted(ctx context.Context, itemID uuid.UUID, stock int) (bool, error) {
	first, err := a.client.SetNX(ctx, a.key(itemID), strconv.Itoa(stock), a.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reorder mark: %w", err)
	}
	return first, nil
}

// Clear forgets itemID so the next low-stock change alerts again.
func (a *ReorderAlerts) Clear(ctx context.Context, itemID uuid.UUID) error {
	if err := a.client.Del(ctx, a.key(itemID)).Err(); err != nil {
		return fmt.Errorf("reorder clear: %w", err)
	}
	return nil
}

func (a *ReorderAlerts) key(itemID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", reorderKeyPrefix, itemID)
}
