package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/havenops/stockledger/pkg/config"
)

// newTestConfig returns a config pointing at url.
func newTestConfig(url string) *config.Config {
	return &config.Config{
		RedisURL:    url,
		ServiceName: "stockledger-test",
	}
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), newTestConfig("not-a-valid-url"))
	if err == nil {
		t.Fatal("expected error for invalid URL, got nil")
	}
}

func TestNewRedisClient_UnreachableHost(t *testing.T) {
	_, err := NewRedisClient(context.Background(), newTestConfig("redis://localhost:19999"))
	if err == nil {
		t.Fatal("expected error when Redis is unreachable, got nil")
	}
}

func TestReorderAlerts_Key(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	a := &ReorderAlerts{}
	if got := a.key(id); got != "stockledger:reorder:123e4567-e89b-12d3-a456-426614174000" {
		t.Fatalf("unexpected key %q", got)
	}
}

// Integration tests, skipped unless REDIS_URL is set.
func TestRedisIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	ctx := context.Background()

	t.Run("Ping_Success", func(t *testing.T) {
		rc, err := NewRedisClient(ctx, newTestConfig(redisURL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer rc.Close() //nolint:errcheck

		if err := rc.Ping(ctx); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})

	t.Run("ReorderAlerts_Dedupe", func(t *testing.T) {
		rc, err := NewRedisClient(ctx, newTestConfig(redisURL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer rc.Close() //nolint:errcheck

		alerts := NewReorderAlerts(rc, time.Minute)
		id := uuid.New()
		defer alerts.Clear(ctx, id) //nolint:errcheck

		first, err := alerts.MarkAlerted(ctx, id, 3)
		if err != nil || !first {
			t.Fatalf("first mark: got (%v, %v), want (true, nil)", first, err)
		}
		again, err := alerts.MarkAlerted(ctx, id, 2)
		if err != nil || again {
			t.Fatalf("second mark: got (%v, %v), want (false, nil)", again, err)
		}

		if err := alerts.Clear(ctx, id); err != nil {
			t.Fatalf("clear: %v", err)
		}
		rearmed, err := alerts.MarkAlerted(ctx, id, 1)
		if err != nil || !rearmed {
			t.Fatalf("mark after clear: got (%v, %v), want (true, nil)", rearmed, err)
		}
	})

	t.Run("ReorderAlerts_Expire", func(t *testing.T) {
		rc, err := NewRedisClient(ctx, newTestConfig(redisURL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer rc.Close() //nolint:errcheck

		alerts := NewReorderAlerts(rc, time.Second)
		id := uuid.New()
		if _, err := alerts.MarkAlerted(ctx, id, 0); err != nil {
			t.Fatalf("mark: %v", err)
		}
		ttl, err := rc.Client().TTL(ctx, alerts.key(id)).Result()
		if err != nil || ttl <= 0 || ttl > time.Second {
			t.Fatalf("unexpected ttl %v (%v)", ttl, err)
		}
	})
}
