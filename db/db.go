package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// DB wraps the shared connection pool together with the dialect selected at
// startup. Repositories write their queries once, with "?" placeholders, and
// go through the wrapper for anything the two engines disagree on.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Connect opens a pool for the given engine ("mysql" or "postgres"),
// configures its limits and verifies connectivity within the timeout.
func Connect(engine, dsn string, timeout time.Duration) (*DB, error) {
	dialect, err := dialectFor(engine)
	if err != nil {
		return nil, err
	}

	driver := "mysql"
	if engine == "postgres" {
		driver = "postgres"
	}

	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = pool.PingContext(ctx); err != nil {
		if closeErr := pool.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close error: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return &DB{DB: pool, dialect: dialect}, nil
}

// DialectName returns the engine identifier ("mysql" or "postgres").
func (d *DB) DialectName() string {
	return d.dialect.Name()
}

// Rebind rewrites "?" placeholders into the form the engine expects.
func (d *DB) Rebind(query string) string {
	return d.dialect.Rebind(query)
}

// InsertReturningID executes an INSERT written without a RETURNING clause and
// yields the generated id, whichever way the engine exposes it.
func (d *DB) InsertReturningID(ctx context.Context, query string, args ...interface{}) (int, error) {
	return d.dialect.InsertReturningID(ctx, d.DB, query, args...)
}

// HasColumn probes schema metadata for the existence of a column.
func (d *DB) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return d.dialect.HasColumn(ctx, d.DB, table, column)
}

// AddColumnIfAbsent adds a column when it does not exist yet.
func (d *DB) AddColumnIfAbsent(ctx context.Context, table, column, definition string) error {
	return d.dialect.AddColumnIfAbsent(ctx, d.DB, table, column, definition)
}

// CreateIndexIfAbsent creates a single-column index when it does not exist yet.
func (d *DB) CreateIndexIfAbsent(ctx context.Context, index, table, column string) error {
	return d.dialect.CreateIndexIfAbsent(ctx, d.DB, index, table, column)
}

// AddForeignKeyIfAbsent adds a foreign key constraint when it does not exist yet.
func (d *DB) AddForeignKeyIfAbsent(ctx context.Context, table, constraint, column, refTable, refColumn, onDelete string) error {
	return d.dialect.AddForeignKeyIfAbsent(ctx, d.DB, table, constraint, column, refTable, refColumn, onDelete)
}

// EnsureEnumType makes sure an enum with the given values is usable and
// returns the column type to reference it in DDL.
func (d *DB) EnsureEnumType(ctx context.Context, name string, values []string) (string, error) {
	return d.dialect.EnsureEnumType(ctx, d.DB, name, values)
}

// SerialPrimaryKey returns the engine's auto-incrementing primary key DDL.
func (d *DB) SerialPrimaryKey() string {
	return d.dialect.SerialPrimaryKey()
}
