package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/models"
)

// StatsRepository computes the derived statistics views. Nothing here is
// stored; every call aggregates over partidas at read time.
//
// The approvedOnly flag is decided by the service layer from a schema probe:
// installations predating the approval migration have no estado column and
// must aggregate over all matches.
type StatsRepository interface {
	HasStateColumn(ctx context.Context) (bool, error)

	PlayerStats(ctx context.Context, approvedOnly bool) ([]models.PlayerStats, error)
	PlayerStatsByID(ctx context.Context, id int, approvedOnly bool) (*models.PlayerStats, error)
	PlayerStatsFiltered(ctx context.Context, approvedOnly bool, fromDate, toDate string) ([]models.PlayerStats, error)

	DeckStats(ctx context.Context, approvedOnly bool) ([]models.DeckStats, error)
	DeckStatsByID(ctx context.Context, id int, approvedOnly bool) (*models.DeckStats, error)
	DeckStatsFiltered(ctx context.Context, approvedOnly bool, fromDate, toDate string) ([]models.DeckStats, error)

	RecentMatchesByPlayer(ctx context.Context, playerID, limit int) ([]models.MatchSummary, error)
	MatchesBetweenDecks(ctx context.Context, deck1ID, deck2ID int, approvedOnly bool) ([]models.MatchSummary, error)
	MatchesBetweenPlayers(ctx context.Context, player1ID, player2ID int, approvedOnly bool) ([]models.MatchSummary, error)
}

type sqlStatsRepository struct {
	db *db.DB
}

func NewStatsRepository(db *db.DB) StatsRepository {
	return &sqlStatsRepository{db: db}
}

func (r *sqlStatsRepository) HasStateColumn(ctx context.Context) (bool, error) {
	return r.db.HasColumn(ctx, "partidas", "estado")
}

// approvedFilter is attached to the partidas join/where clauses. Rows with a
// NULL estado are rows written before the migration backfill and count as
// approved.
const approvedFilter = " AND (p.estado = 'aprobada' OR p.estado IS NULL)"

func playerStatsQuery(approvedOnly bool, extraWhere string) string {
	join := "LEFT JOIN partidas p ON (u.id = p.jugador1_id OR u.id = p.jugador2_id)"
	if approvedOnly {
		join += approvedFilter
	}
	return `
		SELECT
			u.id,
			u.nombre,
			COUNT(p.id) as total_partidas,
			SUM(CASE WHEN p.ganador_id = u.id THEN 1 ELSE 0 END) as victorias,
			SUM(CASE WHEN p.id IS NOT NULL AND p.ganador_id IS NULL THEN 1 ELSE 0 END) as empates,
			SUM(CASE WHEN p.ganador_id != u.id AND p.ganador_id IS NOT NULL THEN 1 ELSE 0 END) as derrotas,
			ROUND(
				(SUM(CASE WHEN p.ganador_id = u.id THEN 1 ELSE 0 END) * 100.0) /
				NULLIF(COUNT(p.id), 0),
				2
			) as winrate
		FROM usuarios u
		` + join + `
		` + extraWhere + `
		GROUP BY u.id, u.nombre
		ORDER BY winrate DESC, victorias DESC`
}

func (r *sqlStatsRepository) PlayerStats(ctx context.Context, approvedOnly bool) ([]models.PlayerStats, error) {
	rows, err := r.db.QueryContext(ctx, playerStatsQuery(approvedOnly, ""))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayerStats(rows)
}

func (r *sqlStatsRepository) PlayerStatsByID(ctx context.Context, id int, approvedOnly bool) (*models.PlayerStats, error) {
	query := playerStatsQuery(approvedOnly, "WHERE u.id = ?")
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats, err := collectPlayerStats(rows)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, ErrUserNotFound
	}
	return &stats[0], nil
}

func (r *sqlStatsRepository) PlayerStatsFiltered(ctx context.Context, approvedOnly bool, fromDate, toDate string) ([]models.PlayerStats, error) {
	// Date filters switch to an inner join: a player with no matches in the
	// range simply does not appear.
	conditions := ""
	args := []interface{}{}
	if approvedOnly {
		conditions += approvedFilter
	}
	if fromDate != "" {
		conditions += " AND DATE(p.fecha_partida) >= ?"
		args = append(args, fromDate)
	}
	if toDate != "" {
		conditions += " AND DATE(p.fecha_partida) <= ?"
		args = append(args, toDate)
	}

	query := `
		SELECT
			u.id,
			u.nombre,
			COUNT(p.id) as total_partidas,
			SUM(CASE WHEN p.ganador_id = u.id THEN 1 ELSE 0 END) as victorias,
			SUM(CASE WHEN p.ganador_id IS NULL THEN 1 ELSE 0 END) as empates,
			SUM(CASE WHEN p.ganador_id != u.id AND p.ganador_id IS NOT NULL THEN 1 ELSE 0 END) as derrotas,
			ROUND(
				(SUM(CASE WHEN p.ganador_id = u.id THEN 1 ELSE 0 END) * 100.0) /
				NULLIF(COUNT(p.id), 0),
				2
			) as winrate
		FROM usuarios u
		INNER JOIN partidas p ON (u.id = p.jugador1_id OR u.id = p.jugador2_id)` + conditions + `
		GROUP BY u.id, u.nombre
		ORDER BY winrate DESC, victorias DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayerStats(rows)
}

func deckStatsQuery(approvedOnly bool, extraWhere string) string {
	join := "LEFT JOIN partidas p ON (m.id = p.mazo1_id OR m.id = p.mazo2_id)"
	if approvedOnly {
		join += approvedFilter
	}
	return `
		SELECT
			m.id,
			m.nombre,
			m.serie,
			COUNT(p.id) as total_partidas,
			SUM(CASE
				WHEN (p.mazo1_id = m.id AND p.resultado = 'victoria_jugador1') OR
				     (p.mazo2_id = m.id AND p.resultado = 'victoria_jugador2')
				THEN 1 ELSE 0
			END) as victorias,
			SUM(CASE WHEN p.resultado = 'empate' THEN 1 ELSE 0 END) as empates,
			SUM(CASE
				WHEN (p.mazo1_id = m.id AND p.resultado = 'victoria_jugador2') OR
				     (p.mazo2_id = m.id AND p.resultado = 'victoria_jugador1')
				THEN 1 ELSE 0
			END) as derrotas,
			ROUND(
				(SUM(CASE
					WHEN (p.mazo1_id = m.id AND p.resultado = 'victoria_jugador1') OR
					     (p.mazo2_id = m.id AND p.resultado = 'victoria_jugador2')
					THEN 1 ELSE 0
				END) * 100.0) /
				NULLIF(COUNT(p.id), 0),
				2
			) as winrate
		FROM mazos m
		` + join + `
		` + extraWhere + `
		GROUP BY m.id, m.nombre, m.serie
		ORDER BY winrate DESC, victorias DESC`
}

func (r *sqlStatsRepository) DeckStats(ctx context.Context, approvedOnly bool) ([]models.DeckStats, error) {
	rows, err := r.db.QueryContext(ctx, deckStatsQuery(approvedOnly, ""))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeckStats(rows)
}

func (r *sqlStatsRepository) DeckStatsByID(ctx context.Context, id int, approvedOnly bool) (*models.DeckStats, error) {
	query := deckStatsQuery(approvedOnly, "WHERE m.id = ?")
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats, err := collectDeckStats(rows)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, ErrDeckNotFound
	}
	return &stats[0], nil
}

func (r *sqlStatsRepository) DeckStatsFiltered(ctx context.Context, approvedOnly bool, fromDate, toDate string) ([]models.DeckStats, error) {
	conditions := ""
	args := []interface{}{}
	if approvedOnly {
		conditions += approvedFilter
	}
	if fromDate != "" {
		conditions += " AND DATE(p.fecha_partida) >= ?"
		args = append(args, fromDate)
	}
	if toDate != "" {
		conditions += " AND DATE(p.fecha_partida) <= ?"
		args = append(args, toDate)
	}

	query := `
		SELECT
			m.id,
			m.nombre,
			m.serie,
			COUNT(p.id) as total_partidas,
			SUM(CASE
				WHEN (p.mazo1_id = m.id AND p.resultado = 'victoria_jugador1') OR
				     (p.mazo2_id = m.id AND p.resultado = 'victoria_jugador2')
				THEN 1 ELSE 0
			END) as victorias,
			SUM(CASE WHEN p.resultado = 'empate' THEN 1 ELSE 0 END) as empates,
			SUM(CASE
				WHEN (p.mazo1_id = m.id AND p.resultado = 'victoria_jugador2') OR
				     (p.mazo2_id = m.id AND p.resultado = 'victoria_jugador1')
				THEN 1 ELSE 0
			END) as derrotas,
			ROUND(
				(SUM(CASE
					WHEN (p.mazo1_id = m.id AND p.resultado = 'victoria_jugador1') OR
					     (p.mazo2_id = m.id AND p.resultado = 'victoria_jugador2')
					THEN 1 ELSE 0
				END) * 100.0) /
				NULLIF(COUNT(p.id), 0),
				2
			) as winrate
		FROM mazos m
		INNER JOIN partidas p ON (m.id = p.mazo1_id OR m.id = p.mazo2_id)` + conditions + `
		GROUP BY m.id, m.nombre, m.serie
		ORDER BY winrate DESC, victorias DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeckStats(rows)
}

func (r *sqlStatsRepository) RecentMatchesByPlayer(ctx context.Context, playerID, limit int) ([]models.MatchSummary, error) {
	query := "SELECT" + matchSummaryColumns + matchSummaryJoins +
		" WHERE p.jugador1_id = ? OR p.jugador2_id = ?" +
		" ORDER BY p.fecha_partida DESC LIMIT ?"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), playerID, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatchSummaries(rows, false)
}

func (r *sqlStatsRepository) MatchesBetweenDecks(ctx context.Context, deck1ID, deck2ID int, approvedOnly bool) ([]models.MatchSummary, error) {
	where := " WHERE ((p.mazo1_id = ? AND p.mazo2_id = ?) OR (p.mazo1_id = ? AND p.mazo2_id = ?))"
	if approvedOnly {
		where += approvedFilter
	}
	query := "SELECT" + matchSummaryColumns + matchSummaryJoins + where +
		" ORDER BY p.fecha_partida DESC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), deck1ID, deck2ID, deck2ID, deck1ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatchSummaries(rows, false)
}

func (r *sqlStatsRepository) MatchesBetweenPlayers(ctx context.Context, player1ID, player2ID int, approvedOnly bool) ([]models.MatchSummary, error) {
	where := " WHERE ((p.jugador1_id = ? AND p.jugador2_id = ?) OR (p.jugador1_id = ? AND p.jugador2_id = ?))"
	if approvedOnly {
		where += approvedFilter
	}
	query := "SELECT" + matchSummaryColumns + matchSummaryJoins + where +
		" ORDER BY p.fecha_partida DESC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), player1ID, player2ID, player2ID, player1ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatchSummaries(rows, false)
}

func collectPlayerStats(rows *sql.Rows) ([]models.PlayerStats, error) {
	stats := make([]models.PlayerStats, 0)
	for rows.Next() {
		var s models.PlayerStats
		var winrate sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Name, &s.TotalMatches, &s.Wins, &s.Draws, &s.Losses, &winrate); err != nil {
			return nil, fmt.Errorf("failed to scan player stats: %w", err)
		}
		if winrate.Valid {
			s.Winrate = &winrate.Float64
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func collectDeckStats(rows *sql.Rows) ([]models.DeckStats, error) {
	stats := make([]models.DeckStats, 0)
	for rows.Next() {
		var s models.DeckStats
		var winrate sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Name, &s.Series, &s.TotalMatches, &s.Wins, &s.Draws, &s.Losses, &winrate); err != nil {
			return nil, fmt.Errorf("failed to scan deck stats: %w", err)
		}
		if winrate.Valid {
			s.Winrate = &winrate.Float64
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
