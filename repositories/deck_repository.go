package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/models"
)

var ErrDeckNotFound = errors.New("deck not found")

type DeckRepository interface {
	List(ctx context.Context) ([]models.Deck, error)
	GetByID(ctx context.Context, id int) (*models.Deck, error)
	ListCards(ctx context.Context, deckID int) ([]models.Card, error)
	ListSeries(ctx context.Context) ([]string, error)
	ListBySeries(ctx context.Context, series string) ([]models.Deck, error)
	Create(ctx context.Context, deck *models.Deck) error
	Update(ctx context.Context, deck *models.Deck) error
	SetImage(ctx context.Context, id int, imageURL string) error
	Delete(ctx context.Context, id int) error
	CountMatchesUsing(ctx context.Context, id int) (int, error)
}

type sqlDeckRepository struct {
	db *db.DB
}

func NewDeckRepository(db *db.DB) DeckRepository {
	return &sqlDeckRepository{db: db}
}

func (r *sqlDeckRepository) List(ctx context.Context) ([]models.Deck, error) {
	query := `
		SELECT id, nombre, serie, descripcion, imagen, fecha_creacion
		FROM mazos
		ORDER BY serie, nombre`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecks(rows)
}

func (r *sqlDeckRepository) GetByID(ctx context.Context, id int) (*models.Deck, error) {
	query := `
		SELECT id, nombre, serie, descripcion, imagen, fecha_creacion
		FROM mazos
		WHERE id = ?`

	deck := &models.Deck{}
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), id).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Series,
		&deck.Description,
		&deck.Image,
		&deck.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	return deck, nil
}

func (r *sqlDeckRepository) ListCards(ctx context.Context, deckID int) ([]models.Card, error) {
	query := `
		SELECT id, mazo_id, nombre, poder, descripcion
		FROM cartas
		WHERE mazo_id = ?
		ORDER BY poder DESC, nombre`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]models.Card, 0)
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.DeckID, &card.Name, &card.Power, &card.Description); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *sqlDeckRepository) ListSeries(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT serie FROM mazos ORDER BY serie`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, rows.Err()
}

func (r *sqlDeckRepository) ListBySeries(ctx context.Context, series string) ([]models.Deck, error) {
	query := `
		SELECT id, nombre, serie, descripcion, imagen, fecha_creacion
		FROM mazos
		WHERE serie = ?
		ORDER BY nombre`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), series)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecks(rows)
}

func (r *sqlDeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO mazos (nombre, serie, descripcion, imagen)
		VALUES (?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, query, deck.Name, deck.Series, deck.Description, deck.Image)
	if err != nil {
		return err
	}
	deck.ID = id
	return nil
}

func (r *sqlDeckRepository) Update(ctx context.Context, deck *models.Deck) error {
	query := `
		UPDATE mazos
		SET nombre = ?, serie = ?, descripcion = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		deck.Name, deck.Series, deck.Description, deck.ID)
	if err != nil {
		return err
	}
	return checkUpdateResult(result, func() (bool, error) {
		return rowExists(ctx, r.db, "mazos", deck.ID)
	}, ErrDeckNotFound)
}

func (r *sqlDeckRepository) SetImage(ctx context.Context, id int, imageURL string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE mazos SET imagen = ? WHERE id = ?`), imageURL, id)
	if err != nil {
		return err
	}
	return checkUpdateResult(result, func() (bool, error) {
		return rowExists(ctx, r.db, "mazos", id)
	}, ErrDeckNotFound)
}

func (r *sqlDeckRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM mazos WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDeckNotFound)
}

// CountMatchesUsing counts matches referencing the deck on either side.
// Deletion is blocked at the service layer while this is non-zero.
func (r *sqlDeckRepository) CountMatchesUsing(ctx context.Context, id int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT COUNT(*) FROM partidas WHERE mazo1_id = ? OR mazo2_id = ?`),
		id, id).Scan(&count)
	return count, err
}

func collectDecks(rows *sql.Rows) ([]models.Deck, error) {
	decks := make([]models.Deck, 0)
	for rows.Next() {
		var deck models.Deck
		if err := rows.Scan(
			&deck.ID,
			&deck.Name,
			&deck.Series,
			&deck.Description,
			&deck.Image,
			&deck.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decks, nil
}
