package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
)

var ErrInvalidRuleSetData = errors.New("invalid rule set data")

type RuleSetService interface {
	Create(ctx context.Context, ruleSet *models.RuleSet) error
	GetByID(ctx context.Context, id int) (*models.RuleSet, error)
	List(ctx context.Context) ([]*models.RuleSet, error)
}

type ruleSetService struct {
	repo repositories.RuleSetRepository
}

func NewRuleSetService(repo repositories.RuleSetRepository) RuleSetService {
	return &ruleSetService{repo: repo}
}

func (s *ruleSetService) Create(ctx context.Context, ruleSet *models.RuleSet) error {
	if strings.TrimSpace(ruleSet.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRuleSetData)
	}
	if ruleSet.DurationSeconds <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRuleSetData)
	}
	if err := s.repo.Create(ctx, ruleSet); err != nil {
		return fmt.Errorf("failed to create rule set: %w", err)
	}
	return nil
}

func (s *ruleSetService) GetByID(ctx context.Context, id int) (*models.RuleSet, error) {
	ruleSet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleSetNotFound) {
			return nil, ErrRuleSetNotFound
		}
		return nil, fmt.Errorf("failed to get rule set %d: %w", id, err)
	}
	return ruleSet, nil
}

func (s *ruleSetService) List(ctx context.Context) ([]*models.RuleSet, error) {
	return s.repo.List(ctx)
}
