package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchNotPending covers both "no such match" and "already processed":
	// the conditional update cannot tell them apart, and callers are not
	// supposed to either.
	ErrMatchNotPending = errors.New("match not found or not pending")

	// ErrMatchReferenceInvalid surfaces a foreign-key violation on insert:
	// one of the referenced players or decks does not exist.
	ErrMatchReferenceInvalid = errors.New("match references a missing player or deck")
)

type MatchRepository interface {
	// Insert persists an admin-entered match. The estado column is left to
	// the schema default ('aprobada' once the approval migration ran), which
	// also keeps the statement valid on installations predating the column.
	Insert(ctx context.Context, match *models.Match) error

	// InsertPending persists a self-reported match in pendiente state with
	// the reporter recorded.
	InsertPending(ctx context.Context, match *models.Match) error

	// UpdateState transitions estado from one state to another in a single
	// conditional statement. Zero affected rows yield ErrMatchNotPending.
	UpdateState(ctx context.Context, id int, from, to models.MatchState) error

	GetByID(ctx context.Context, id int, withState bool) (*models.MatchSummary, error)
	List(ctx context.Context, approvedOnly bool, limit, offset int) ([]models.MatchSummary, error)
	Count(ctx context.Context, approvedOnly bool) (int, error)
	ListPending(ctx context.Context) ([]models.MatchSummary, error)
	Delete(ctx context.Context, id int) error
}

type sqlMatchRepository struct {
	db *db.DB
}

func NewMatchRepository(db *db.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

func (r *sqlMatchRepository) Insert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO partidas (jugador1_id, jugador2_id, mazo1_id, mazo2_id, ganador_id, resultado, notas)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, query,
		match.Player1ID,
		match.Player2ID,
		match.Deck1ID,
		match.Deck2ID,
		match.WinnerID,
		match.Result,
		match.Notes,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMatchReferenceInvalid
		}
		return err
	}
	match.ID = id
	return nil
}

func (r *sqlMatchRepository) InsertPending(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO partidas (jugador1_id, jugador2_id, mazo1_id, mazo2_id, ganador_id, resultado, notas, estado, usuario_registro_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, query,
		match.Player1ID,
		match.Player2ID,
		match.Deck1ID,
		match.Deck2ID,
		match.WinnerID,
		match.Result,
		match.Notes,
		models.MatchStatePending,
		match.ReportedByID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMatchReferenceInvalid
		}
		return err
	}
	match.ID = id
	match.State = models.MatchStatePending
	return nil
}

func (r *sqlMatchRepository) UpdateState(ctx context.Context, id int, from, to models.MatchState) error {
	// The state check has to live in the same statement as the update, so
	// two concurrent admin actions cannot both succeed on the same match.
	query := `UPDATE partidas SET estado = ? WHERE id = ? AND estado = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), to, id, from)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotPending)
}

const matchSummaryColumns = `
	p.id,
	p.fecha_partida,
	p.resultado,
	p.notas,
	p.jugador1_id,
	p.jugador2_id,
	u1.nombre,
	u2.nombre,
	p.mazo1_id,
	p.mazo2_id,
	m1.nombre,
	m1.serie,
	m2.nombre,
	m2.serie,
	ug.nombre`

const matchSummaryJoins = `
	FROM partidas p
	JOIN usuarios u1 ON p.jugador1_id = u1.id
	JOIN usuarios u2 ON p.jugador2_id = u2.id
	JOIN mazos m1 ON p.mazo1_id = m1.id
	JOIN mazos m2 ON p.mazo2_id = m2.id
	LEFT JOIN usuarios ug ON p.ganador_id = ug.id`

func (r *sqlMatchRepository) GetByID(ctx context.Context, id int, withState bool) (*models.MatchSummary, error) {
	columns := matchSummaryColumns
	if withState {
		columns += ", p.estado, p.usuario_registro_id"
	}
	query := "SELECT" + columns + matchSummaryJoins + " WHERE p.id = ?"

	row := r.db.QueryRowContext(ctx, r.db.Rebind(query), id)
	match, err := scanMatchSummary(row, withState)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *sqlMatchRepository) List(ctx context.Context, approvedOnly bool, limit, offset int) ([]models.MatchSummary, error) {
	columns := matchSummaryColumns
	where := ""
	if approvedOnly {
		columns += ", p.estado, p.usuario_registro_id"
		where = " WHERE (p.estado = 'aprobada' OR p.estado IS NULL)"
	}
	query := "SELECT" + columns + matchSummaryJoins + where +
		" ORDER BY p.fecha_partida DESC LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatchSummaries(rows, approvedOnly)
}

func (r *sqlMatchRepository) Count(ctx context.Context, approvedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM partidas p`
	if approvedOnly {
		query += ` WHERE (p.estado = 'aprobada' OR p.estado IS NULL)`
	}
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (r *sqlMatchRepository) ListPending(ctx context.Context) ([]models.MatchSummary, error) {
	query := "SELECT" + matchSummaryColumns + ", p.estado, p.usuario_registro_id" +
		matchSummaryJoins +
		" WHERE p.estado = 'pendiente' ORDER BY p.fecha_partida DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatchSummaries(rows, true)
}

func (r *sqlMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM partidas WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchSummary(row rowScanner, withState bool) (*models.MatchSummary, error) {
	var m models.MatchSummary
	var state sql.NullString

	dest := []interface{}{
		&m.ID,
		&m.PlayedAt,
		&m.Result,
		&m.Notes,
		&m.Player1ID,
		&m.Player2ID,
		&m.Player1Name,
		&m.Player2Name,
		&m.Deck1ID,
		&m.Deck2ID,
		&m.Deck1Name,
		&m.Deck1Series,
		&m.Deck2Name,
		&m.Deck2Series,
		&m.WinnerName,
	}
	if withState {
		dest = append(dest, &state, &m.ReportedByID)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if state.Valid {
		m.State = models.MatchState(state.String)
	}
	return &m, nil
}

func collectMatchSummaries(rows *sql.Rows, withState bool) ([]models.MatchSummary, error) {
	matches := make([]models.MatchSummary, 0)
	for rows.Next() {
		m, err := scanMatchSummary(rows, withState)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
