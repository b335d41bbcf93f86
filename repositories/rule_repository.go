package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ligadelmazo/backend/db"
	"github.com/ligadelmazo/backend/models"
)

var ErrRuleNotFound = errors.New("rule not found")

type RuleRepository interface {
	List(ctx context.Context) ([]models.Rule, error)
	Create(ctx context.Context, rule *models.Rule) error
	Update(ctx context.Context, rule *models.Rule) error
	UpdatePosition(ctx context.Context, id, order int, parentID *int) error
	Delete(ctx context.Context, id int) error
}

type sqlRuleRepository struct {
	db *db.DB
}

func NewRuleRepository(db *db.DB) RuleRepository {
	return &sqlRuleRepository{db: db}
}

func (r *sqlRuleRepository) List(ctx context.Context) ([]models.Rule, error) {
	query := `
		SELECT id, titulo, contenido, parent_id, orden
		FROM normas
		ORDER BY orden ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]models.Rule, 0)
	for rows.Next() {
		var rule models.Rule
		if err := rows.Scan(&rule.ID, &rule.Title, &rule.Content, &rule.ParentID, &rule.Order); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *sqlRuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	query := `
		INSERT INTO normas (titulo, contenido, parent_id, orden)
		VALUES (?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, query,
		rule.Title, rule.Content, rule.ParentID, rule.Order)
	if err != nil {
		return err
	}
	rule.ID = id
	return nil
}

func (r *sqlRuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	query := `
		UPDATE normas
		SET titulo = ?, contenido = ?, parent_id = ?, orden = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		rule.Title, rule.Content, rule.ParentID, rule.Order, rule.ID)
	if err != nil {
		return err
	}
	return checkUpdateResult(result, func() (bool, error) {
		return rowExists(ctx, r.db, "normas", rule.ID)
	}, ErrRuleNotFound)
}

func (r *sqlRuleRepository) UpdatePosition(ctx context.Context, id, order int, parentID *int) error {
	query := `UPDATE normas SET orden = ?, parent_id = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), order, parentID, id)
	if err != nil {
		return err
	}
	return checkUpdateResult(result, func() (bool, error) {
		return rowExists(ctx, r.db, "normas", id)
	}, ErrRuleNotFound)
}

func (r *sqlRuleRepository) Delete(ctx context.Context, id int) error {
	// Child rows go with the parent via ON DELETE CASCADE.
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM normas WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRuleNotFound)
}
