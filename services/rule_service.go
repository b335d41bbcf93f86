package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

type RuleInput struct {
	Title    string  `json:"titulo"`
	Content  *string `json:"contenido"`
	ParentID *int    `json:"parent_id"`
	Order    int     `json:"orden"`
}

// RulePosition is one entry of a batch reorder request.
type RulePosition struct {
	ID       int  `json:"id"`
	Order    int  `json:"orden"`
	ParentID *int `json:"parent_id"`
}

type RuleService interface {
	List(ctx context.Context) ([]models.Rule, error)
	Create(ctx context.Context, input RuleInput) (*models.Rule, error)
	Update(ctx context.Context, id int, input RuleInput) (*models.Rule, error)

	// Reorder applies a batch of position updates in request order.
	Reorder(ctx context.Context, positions []RulePosition) error

	Delete(ctx context.Context, id int) error
}

type ruleService struct {
	ruleRepo repositories.RuleRepository
}

func NewRuleService(ruleRepo repositories.RuleRepository) RuleService {
	return &ruleService{ruleRepo: ruleRepo}
}

func (s *ruleService) List(ctx context.Context) ([]models.Rule, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

func (s *ruleService) Create(ctx context.Context, input RuleInput) (*models.Rule, error) {
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}

	rule := &models.Rule{
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		ParentID: input.ParentID,
		Order:    input.Order,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}
	return rule, nil
}

func (s *ruleService) Update(ctx context.Context, id int, input RuleInput) (*models.Rule, error) {
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}

	rule := &models.Rule{
		ID:       id,
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		ParentID: input.ParentID,
		Order:    input.Order,
	}
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

func (s *ruleService) Reorder(ctx context.Context, positions []RulePosition) error {
	if len(positions) == 0 {
		v := newValidationError()
		v.add("normas", "Se requiere al menos una posición")
		return v.orNil()
	}

	for _, p := range positions {
		if err := s.ruleRepo.UpdatePosition(ctx, p.ID, p.Order, p.ParentID); err != nil {
			if errors.Is(err, repositories.ErrRuleNotFound) {
				return ErrRuleNotFound
			}
			return fmt.Errorf("failed to reposition rule %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *ruleService) Delete(ctx context.Context, id int) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

func validateRuleInput(input RuleInput) error {
	v := newValidationError()
	if strings.TrimSpace(input.Title) == "" {
		v.add("titulo", "El título es requerido")
	}
	return v.orNil()
}
