package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect abstracts the DDL and DML differences between MySQL and PostgreSQL
// behind logical operations, so that a single query produces the same logical
// effect and the same return shape on either engine. The concrete dialect is
// chosen once at process start from configuration; business logic never
// branches on the engine type.
type Dialect interface {
	Name() string
	Rebind(query string) string
	InsertReturningID(ctx context.Context, db *sql.DB, query string, args ...interface{}) (int, error)
	HasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error)
	AddColumnIfAbsent(ctx context.Context, db *sql.DB, table, column, definition string) error
	CreateIndexIfAbsent(ctx context.Context, db *sql.DB, index, table, column string) error
	AddForeignKeyIfAbsent(ctx context.Context, db *sql.DB, table, constraint, column, refTable, refColumn, onDelete string) error
	EnsureEnumType(ctx context.Context, db *sql.DB, name string, values []string) (string, error)
	SerialPrimaryKey() string
}

func dialectFor(engine string) (Dialect, error) {
	switch engine {
	case "mysql":
		return mysqlDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database engine %q", engine)
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// Rebind rewrites "?" placeholders into "$1".."$n". Queries in this codebase
// never carry a literal question mark, so no quote tracking is needed.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d postgresDialect) InsertReturningID(ctx context.Context, db *sql.DB, query string, args ...interface{}) (int, error) {
	var id int
	err := db.QueryRowContext(ctx, d.Rebind(query)+" RETURNING id", args...).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d postgresDialect) HasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`,
		table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d postgresDialect) AddColumnIfAbsent(ctx context.Context, db *sql.DB, table, column, definition string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", table, column, definition))
	return err
}

func (d postgresDialect) CreateIndexIfAbsent(ctx context.Context, db *sql.DB, index, table, column string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s(%s)", index, table, column))
	return err
}

func (d postgresDialect) AddForeignKeyIfAbsent(ctx context.Context, db *sql.DB, table, constraint, column, refTable, refColumn, onDelete string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		DO $$ BEGIN
			ALTER TABLE %s
			ADD CONSTRAINT %s
			FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s;
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$`,
		table, constraint, column, refTable, refColumn, onDelete))
	return err
}

func (d postgresDialect) EnsureEnumType(ctx context.Context, db *sql.DB, name string, values []string) (string, error) {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		DO $$ BEGIN
			CREATE TYPE %s AS ENUM (%s);
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$`,
		name, strings.Join(quoted, ", ")))
	if err != nil {
		return "", err
	}
	return name, nil
}

func (postgresDialect) SerialPrimaryKey() string { return "SERIAL PRIMARY KEY" }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Rebind(query string) string { return query }

func (d mysqlDialect) InsertReturningID(ctx context.Context, db *sql.DB, query string, args ...interface{}) (int, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read last insert id: %w", err)
	}
	return int(id), nil
}

func (d mysqlDialect) HasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`,
		table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MySQL has no ADD COLUMN IF NOT EXISTS, so existence is probed first.
func (d mysqlDialect) AddColumnIfAbsent(ctx context.Context, db *sql.DB, table, column, definition string) error {
	exists, err := d.HasColumn(ctx, db, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

func (d mysqlDialect) CreateIndexIfAbsent(ctx context.Context, db *sql.DB, index, table, column string) error {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
		table, index).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"CREATE INDEX %s ON %s(%s)", index, table, column))
	return err
}

func (d mysqlDialect) AddForeignKeyIfAbsent(ctx context.Context, db *sql.DB, table, constraint, column, refTable, refColumn, onDelete string) error {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.table_constraints
		WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = ?`,
		table, constraint).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s",
		table, constraint, column, refTable, refColumn, onDelete))
	return err
}

// MySQL enums are inline column types; there is no named type to create.
func (d mysqlDialect) EnsureEnumType(ctx context.Context, db *sql.DB, name string, values []string) (string, error) {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return fmt.Sprintf("ENUM(%s)", strings.Join(quoted, ", ")), nil
}

func (mysqlDialect) SerialPrimaryKey() string { return "INT AUTO_INCREMENT PRIMARY KEY" }
