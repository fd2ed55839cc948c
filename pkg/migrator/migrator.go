// Package migrator applies embedded goose SQL migrations.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/havenops/stockledger/pkg/logger"
)

// RunMigrations opens dbURL with pgx and applies every pending migration in files.
func RunMigrations(ctx context.Context, dbURL string, files fs.FS, log logger.Logger) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	_, err = Up(ctx, db, goose.DialectPostgres, files, log)
	return err
}

// Up applies pending migrations from files to db and returns the resulting
// schema version.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, files fs.FS, log logger.Logger) (int64, error) {
	provider, err := goose.NewProvider(dialect, db, files)
	if err != nil {
		return 0, fmt.Errorf("new goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		log.Info("migration applied",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	log.Info("schema up to date", "version", version, "applied", len(results))
	return version, nil
}
