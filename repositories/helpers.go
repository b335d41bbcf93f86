package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/ligadelmazo/backend/db"
)

// checkAffectedRows maps a zero-row result to a not-found sentinel. Safe for
// DELETEs and for conditional UPDATEs that always change a column value; for
// plain UPDATEs use checkUpdateResult instead.
func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// checkUpdateResult interprets an unconditional UPDATE's outcome. The MySQL
// protocol reports rows the statement changed, not rows it matched, so
// re-submitting an edit with identical values yields zero even though the row
// exists; only an existence probe can tell that apart from a missing row.
// Postgres counts matched rows and resolves before the probe.
func checkUpdateResult(result sql.Result, exists func() (bool, error), notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}
	found, err := exists()
	if err != nil {
		return fmt.Errorf("failed to verify row existence: %w", err)
	}
	if !found {
		return notFoundError
	}
	return nil
}

// rowExists probes for a row by primary key.
func rowExists(ctx context.Context, database *db.DB, table string, id int) (bool, error) {
	var one int
	err := database.QueryRowContext(ctx,
		database.Rebind("SELECT 1 FROM "+table+" WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// isUniqueViolation recognizes a unique-constraint error from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

// isForeignKeyViolation recognizes a foreign-key error from either driver.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1452
	}
	return false
}
