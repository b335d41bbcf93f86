package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ligadelmazo/backend/db"
)

// MigrationStatus reports which pieces of the approval system exist in the
// connected database.
type MigrationStatus struct {
	Engine         string `json:"engine"`
	StateColumn    bool   `json:"columna_estado"`
	ReporterColumn bool   `json:"columna_usuario_registro"`
	CounterTable   bool   `json:"tabla_registro_diario"`
}

func (s MigrationStatus) Complete() bool {
	return s.StateColumn && s.ReporterColumn && s.CounterTable
}

// MigrationService upgrades a pre-approval-system schema in place. Every step
// is idempotent; running the migration on an already-migrated database is a
// no-op.
type MigrationService interface {
	Status(ctx context.Context) (*MigrationStatus, error)
	ApplyApprovalSystem(ctx context.Context) (*MigrationStatus, error)
}

type migrationService struct {
	db     *db.DB
	logger *slog.Logger
}

func NewMigrationService(database *db.DB, logger *slog.Logger) MigrationService {
	return &migrationService{db: database, logger: logger}
}

func (s *migrationService) Status(ctx context.Context) (*MigrationStatus, error) {
	status := &MigrationStatus{Engine: s.db.DialectName()}

	var err error
	if status.StateColumn, err = s.db.HasColumn(ctx, "partidas", "estado"); err != nil {
		return nil, fmt.Errorf("failed to probe partidas.estado: %w", err)
	}
	if status.ReporterColumn, err = s.db.HasColumn(ctx, "partidas", "usuario_registro_id"); err != nil {
		return nil, fmt.Errorf("failed to probe partidas.usuario_registro_id: %w", err)
	}
	if status.CounterTable, err = s.db.HasColumn(ctx, "partidas_registro_diario", "cantidad"); err != nil {
		return nil, fmt.Errorf("failed to probe partidas_registro_diario: %w", err)
	}
	return status, nil
}

func (s *migrationService) ApplyApprovalSystem(ctx context.Context) (*MigrationStatus, error) {
	s.logger.Info("applying approval system migration", slog.String("engine", s.db.DialectName()))

	stateType, err := s.db.EnsureEnumType(ctx, "estado_partida",
		[]string{"pendiente", "aprobada", "rechazada"})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure match state type: %w", err)
	}

	// Existing rows predate self-reporting and were all entered by admins,
	// so the column defaults to approved and the backfill below closes any
	// gap left by a previously interrupted run.
	if err := s.db.AddColumnIfAbsent(ctx, "partidas", "estado",
		stateType+" DEFAULT 'aprobada'"); err != nil {
		return nil, fmt.Errorf("failed to add partidas.estado: %w", err)
	}
	if err := s.db.AddColumnIfAbsent(ctx, "partidas", "usuario_registro_id", "INT"); err != nil {
		return nil, fmt.Errorf("failed to add partidas.usuario_registro_id: %w", err)
	}
	if err := s.db.AddForeignKeyIfAbsent(ctx, "partidas", "fk_partidas_usuario_registro",
		"usuario_registro_id", "usuarios", "id", "SET NULL"); err != nil {
		return nil, fmt.Errorf("failed to add reporter foreign key: %w", err)
	}
	if err := s.db.CreateIndexIfAbsent(ctx, "idx_partidas_estado", "partidas", "estado"); err != nil {
		return nil, fmt.Errorf("failed to create state index: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE partidas SET estado = 'aprobada' WHERE estado IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to backfill match states: %w", err)
	}
	if backfilled, err := result.RowsAffected(); err == nil && backfilled > 0 {
		s.logger.Info("backfilled match states", slog.Int64("rows", backfilled))
	}

	counterTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS partidas_registro_diario (
			id %s,
			usuario_id INT NOT NULL,
			fecha DATE NOT NULL,
			cantidad INT NOT NULL DEFAULT 0,
			CONSTRAINT uq_registro_diario UNIQUE (usuario_id, fecha),
			CONSTRAINT fk_registro_diario_usuario FOREIGN KEY (usuario_id)
				REFERENCES usuarios(id) ON DELETE CASCADE
		)`, s.db.SerialPrimaryKey())
	if _, err := s.db.ExecContext(ctx, counterTable); err != nil {
		return nil, fmt.Errorf("failed to create daily counter table: %w", err)
	}

	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("approval system migration applied",
		slog.Bool("complete", status.Complete()))
	return status, nil
}
