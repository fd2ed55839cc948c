// Package database owns the relational connection pool and the transaction
// scope shared by every repository.
//
// A transaction opened with WithTx travels in the context. Repositories call
// Conn(ctx) and transparently run on the open transaction when there is one,
// so a service can compose several repository calls into one atomic unit:
//
//	err := db.WithTx(ctx, func(ctx context.Context) error {
//	    if err := items.Update(ctx, item); err != nil {
//	        return err
//	    }
//	    return audit.Append(ctx, entry)
//	})
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/havenops/stockledger/pkg/logger"
)

type txKey struct{}

// Database wraps the gorm handle and the *sql.DB beneath it.
type Database struct {
	conn        *gorm.DB
	sqlDB       *sql.DB
	lockTimeout time.Duration
}

// Option customises a Database at construction.
type Option func(*Database)

// WithLockTimeout bounds how long a statement inside WithTx may wait for a
// row lock. Zero leaves the server default (wait forever) in place.
func WithLockTimeout(d time.Duration) Option {
	return func(db *Database) { db.lockTimeout = d }
}

// WithPoolSize applies connection pool limits. Non-positive values are ignored.
func WithPoolSize(maxOpen, maxIdle int) Option {
	return func(db *Database) {
		if maxOpen > 0 {
			db.sqlDB.SetMaxOpenConns(maxOpen)
		}
		if maxIdle > 0 {
			db.sqlDB.SetMaxIdleConns(maxIdle)
		}
	}
}

// NewPool connects to PostgreSQL through the pgx stdlib driver and verifies
// connectivity before returning.
func NewPool(ctx context.Context, dsn string, log logger.Logger, opts ...Option) (*Database, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(log))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: gorm open: %w", err)
	}

	db := newDatabase(conn, sqlDB, opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// Open builds a Database from an arbitrary gorm dialector. Tests use it with
// the sqlite driver.
func Open(dialector gorm.Dialector, opts ...Option) (*Database, error) {
	conn, err := gorm.Open(dialector, gormConfig(nil))
	if err != nil {
		return nil, fmt.Errorf("database: gorm open: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("database: sql handle: %w", err)
	}
	return newDatabase(conn, sqlDB, opts), nil
}

func newDatabase(conn *gorm.DB, sqlDB *sql.DB, opts []Option) *Database {
	db := &Database{conn: conn, sqlDB: sqlDB}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func gormConfig(log logger.Logger) *gorm.Config {
	level := gormlogger.Silent
	var w gormlogger.Writer = discardWriter{}
	if log != nil {
		level = gormlogger.Warn
		w = gormWriter{log: log}
	}
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: gormlogger.New(w, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// WithTx runs fn inside a transaction carried by the context passed to fn.
// The transaction commits when fn returns nil and rolls back when fn returns
// an error, panics, or the context is cancelled before commit. A call nested
// inside an open transaction joins it instead of starting a new one.
func (db *Database) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := db.applyLockTimeout(tx); err != nil {
			return err
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (db *Database) applyLockTimeout(tx *gorm.DB) error {
	if db.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	// SET does not accept bind parameters.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", db.lockTimeout.Milliseconds())
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("database: set lock_timeout: %w", err)
	}
	return nil
}

// Conn returns the transaction bound to ctx, or the pool when none is open.
func (db *Database) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.conn.WithContext(ctx)
}

// SQLTx exposes the *sql.Tx behind the transaction bound to ctx so that
// non-gorm writers (the outbox publisher) can join it.
func (db *Database) SQLTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return nil, false
	}
	sqlTx, ok := tx.Statement.ConnPool.(*sql.Tx)
	return sqlTx, ok
}

// InTx reports whether ctx carries an open transaction.
func (db *Database) InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// DB returns the underlying *sql.DB.
func (db *Database) DB() *sql.DB {
	return db.sqlDB
}

// Ping checks the database connection health.
func (db *Database) Ping(ctx context.Context) error {
	if err := db.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (db *Database) Close() {
	_ = db.sqlDB.Close()
}

// gormWriter forwards gorm's slow-query and error lines to the project logger.
type gormWriter struct{ log logger.Logger }

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn("gorm", "detail", fmt.Sprintf(format, args...))
}

type discardWriter struct{}

func (discardWriter) Printf(string, ...any) {}
