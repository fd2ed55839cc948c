package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenops/stockledger/pkg/config"
	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/pkg/logger"
	"github.com/havenops/stockledger/services/inventory/domain"
)

// Integration test, skipped unless DATABASE_URL points at a disposable PostgreSQL.
func TestPostgresRowLockTimeout(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	ctx := context.Background()
	log := logger.New(&config.Config{LogLevel: "error"})
	db, err := database.NewPool(ctx, dsn, log, database.WithLockTimeout(200*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, AutoMigrate(ctx, db))

	repo := NewItemRepository(db)
	item := newItem("Lock Probe", 20, time.Now())
	require.NoError(t, repo.Insert(ctx, item))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), item.ID) })

	locked := make(chan struct{})
	release := make(chan struct{})
	holderDone := make(chan error, 1)
	go func() {
		holderDone <- db.WithTx(ctx, func(ctx context.Context) error {
			if _, err := repo.GetByIDForUpdate(ctx, item.ID); err != nil {
				close(locked)
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	start := time.Now()
	err = db.WithTx(ctx, func(ctx context.Context) error {
		_, err := repo.GetByIDForUpdate(ctx, item.ID)
		return err
	})
	close(release)

	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Less(t, time.Since(start), 5*time.Second)
	require.NoError(t, <-holderDone)
}
