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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

type sqlUserRepository struct {
	db *db.DB
}

func NewUserRepository(db *db.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

func (r *sqlUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO usuarios (nombre, email, password, es_admin)
		VALUES (?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserEmailConflict
		}
		return err
	}
	user.ID = id
	return nil
}

func (r *sqlUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, nombre, email, password, es_admin, fecha_creacion
		FROM usuarios
		WHERE id = ?`
	return r.scanUser(ctx, query, id)
}

func (r *sqlUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, nombre, email, password, es_admin, fecha_creacion
		FROM usuarios
		WHERE email = ?`
	return r.scanUser(ctx, query, email)
}

func (r *sqlUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, nombre, email, password, es_admin, fecha_creacion
		FROM usuarios
		ORDER BY nombre`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Search matches by name or email, for the autocomplete widget.
func (r *sqlUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	sqlQuery := `
		SELECT id, nombre, email, password, es_admin, fecha_creacion
		FROM usuarios
		WHERE nombre LIKE ? OR email LIKE ?
		ORDER BY nombre
		LIMIT ?`

	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(sqlQuery), pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *sqlUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.IsAdmin,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
