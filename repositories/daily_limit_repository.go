package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ligadelmazo/backend/db"
)

// DailyLimitRepository tracks how many matches a user has self-reported on a
// given calendar date. CheckAndIncrement must be atomic per (user, date):
// two concurrent self-reports may never jointly exceed the cap, so both
// implementations fold check and increment into a single statement instead
// of a read-then-write pair.
//
// The two engines need different statements for that, so this is the one
// repository with per-engine implementations, selected once at startup.
type DailyLimitRepository interface {
	// CheckAndIncrement increments the counter for (userID, date) unless it
	// already reached max. It reports whether the registration is allowed
	// and the counter value after the call.
	CheckAndIncrement(ctx context.Context, userID int, date string, max int) (allowed bool, count int, err error)

	// DeleteOlderThan prunes counter rows for dates before the cutoff.
	// Counters are never read again after their day, so this is pure cleanup.
	DeleteOlderThan(ctx context.Context, cutoffDate string) (int64, error)
}

type postgresDailyLimitRepository struct {
	db *db.DB
}

func NewPostgresDailyLimitRepository(db *db.DB) DailyLimitRepository {
	return &postgresDailyLimitRepository{db: db}
}

func (r *postgresDailyLimitRepository) CheckAndIncrement(ctx context.Context, userID int, date string, max int) (bool, int, error) {
	// Upsert-with-increment guarded by the cap. When the guard fails the
	// statement touches nothing and returns no row.
	query := `
		INSERT INTO partidas_registro_diario (usuario_id, fecha, cantidad)
		VALUES ($1, $2, 1)
		ON CONFLICT (usuario_id, fecha)
		DO UPDATE SET cantidad = partidas_registro_diario.cantidad + 1
		WHERE partidas_registro_diario.cantidad < $3
		RETURNING cantidad`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, date, max).Scan(&count)
	if err == nil {
		return true, count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, 0, err
	}

	// Guard failed: the row exists and already sits at the cap.
	err = r.db.QueryRowContext(ctx,
		`SELECT cantidad FROM partidas_registro_diario WHERE usuario_id = $1 AND fecha = $2`,
		userID, date).Scan(&count)
	if err != nil {
		return false, 0, err
	}
	return false, count, nil
}

func (r *postgresDailyLimitRepository) DeleteOlderThan(ctx context.Context, cutoffDate string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM partidas_registro_diario WHERE fecha < $1`, cutoffDate)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type mysqlDailyLimitRepository struct {
	db *db.DB
}

func NewMySQLDailyLimitRepository(db *db.DB) DailyLimitRepository {
	return &mysqlDailyLimitRepository{db: db}
}

func (r *mysqlDailyLimitRepository) CheckAndIncrement(ctx context.Context, userID int, date string, max int) (bool, int, error) {
	// Single-statement upsert. MySQL reports affected rows as 1 for a fresh
	// insert, 2 for an update that changed the row, and 0 for an update that
	// left it unchanged, which distinguishes the three outcomes.
	query := `
		INSERT INTO partidas_registro_diario (usuario_id, fecha, cantidad)
		VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE cantidad = IF(cantidad < ?, cantidad + 1, cantidad)`

	result, err := r.db.ExecContext(ctx, query, userID, date, max)
	if err != nil {
		return false, 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	if affected == 1 {
		return true, 1, nil
	}

	var count int
	err = r.db.QueryRowContext(ctx,
		`SELECT cantidad FROM partidas_registro_diario WHERE usuario_id = ? AND fecha = ?`,
		userID, date).Scan(&count)
	if err != nil {
		return false, 0, err
	}
	return affected == 2, count, nil
}

func (r *mysqlDailyLimitRepository) DeleteOlderThan(ctx context.Context, cutoffDate string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM partidas_registro_diario WHERE fecha < ?`, cutoffDate)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// NewDailyLimitRepository picks the engine-specific implementation. Called
// once during wiring; nothing downstream knows which engine it got.
func NewDailyLimitRepository(database *db.DB) DailyLimitRepository {
	if database.DialectName() == "postgres" {
		return NewPostgresDailyLimitRepository(database)
	}
	return NewMySQLDailyLimitRepository(database)
}
