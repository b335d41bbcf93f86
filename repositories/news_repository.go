package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/models"
)

var ErrNewsNotFound = errors.New("news post not found")

type NewsRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.News, error)
	Count(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]models.News, error)
	GetByID(ctx context.Context, id int) (*models.News, error)
	Create(ctx context.Context, news *models.News) error
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id int) error
}

type sqlNewsRepository struct {
	db *db.DB
}

func NewNewsRepository(db *db.DB) NewsRepository {
	return &sqlNewsRepository{db: db}
}

const newsColumns = `
	n.id,
	n.titulo,
	n.contenido,
	n.imagen_url,
	n.fecha_creacion,
	n.fecha_actualizacion,
	u.id,
	u.nombre`

const newsJoins = `
	FROM noticias n
	JOIN usuarios u ON n.autor_id = u.id`

func (r *sqlNewsRepository) List(ctx context.Context, limit, offset int) ([]models.News, error) {
	query := "SELECT" + newsColumns + newsJoins +
		" ORDER BY n.fecha_creacion DESC LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNews(rows)
}

func (r *sqlNewsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM noticias`).Scan(&count)
	return count, err
}

func (r *sqlNewsRepository) ListRecent(ctx context.Context, limit int) ([]models.News, error) {
	query := "SELECT" + newsColumns + newsJoins +
		" ORDER BY n.fecha_creacion DESC LIMIT ?"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNews(rows)
}

func (r *sqlNewsRepository) GetByID(ctx context.Context, id int) (*models.News, error) {
	query := "SELECT" + newsColumns + newsJoins + " WHERE n.id = ?"

	var n models.News
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), id).Scan(
		&n.ID, &n.Title, &n.Content, &n.ImageURL, &n.CreatedAt, &n.UpdatedAt,
		&n.AuthorID, &n.AuthorName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *sqlNewsRepository) Create(ctx context.Context, news *models.News) error {
	query := `
		INSERT INTO noticias (titulo, contenido, imagen_url, autor_id)
		VALUES (?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, query,
		news.Title, news.Content, news.ImageURL, news.AuthorID)
	if err != nil {
		return err
	}
	news.ID = id
	return nil
}

func (r *sqlNewsRepository) Update(ctx context.Context, news *models.News) error {
	query := `
		UPDATE noticias
		SET titulo = ?, contenido = ?, imagen_url = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		news.Title, news.Content, news.ImageURL, news.ID)
	if err != nil {
		return err
	}
	return checkUpdateResult(result, func() (bool, error) {
		return rowExists(ctx, r.db, "noticias", news.ID)
	}, ErrNewsNotFound)
}

func (r *sqlNewsRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM noticias WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNewsNotFound)
}

func collectNews(rows *sql.Rows) ([]models.News, error) {
	items := make([]models.News, 0)
	for rows.Next() {
		var n models.News
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Content, &n.ImageURL, &n.CreatedAt, &n.UpdatedAt,
			&n.AuthorID, &n.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan news post: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
