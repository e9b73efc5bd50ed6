package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
)

var (
	ErrTournamentNameTaken   = errors.New("tournament name already exists")
	ErrInvalidTournamentData = errors.New("invalid tournament data")
	ErrRuleSetNotFound       = errors.New("rule set not found")
)

type TournamentService interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	repo        repositories.TournamentRepository
	ruleSetRepo repositories.RuleSetRepository
}

func NewTournamentService(repo repositories.TournamentRepository, ruleSetRepo repositories.RuleSetRepository) TournamentService {
	return &tournamentService{repo: repo, ruleSetRepo: ruleSetRepo}
}

func (s *tournamentService) Create(ctx context.Context, tournament *models.Tournament) error {
	if err := validateTournament(tournament); err != nil {
		return err
	}
	if tournament.Status == "" {
		tournament.Status = models.TournamentStatusPlanning
	}
	if err := s.repo.Create(ctx, tournament); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	if rs, rsErr := s.ruleSetRepo.GetByID(ctx, tournament.RuleSetID); rsErr == nil {
		tournament.RuleSet = rs
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *tournamentService) Update(ctx context.Context, tournament *models.Tournament) error {
	if err := validateTournament(tournament); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, tournament); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err)
	}
	return nil
}

func validateTournament(t *models.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTournamentData)
	}
	switch t.DefaultElimination {
	case "", models.SingleElimination, models.DoubleElimination:
	default:
		return fmt.Errorf("%w: unknown elimination type %q", ErrInvalidTournamentData, t.DefaultElimination)
	}
	if t.DefaultElimination == "" {
		t.DefaultElimination = models.SingleElimination
	}
	return nil
}

func (s *tournamentService) mapError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameTaken
	case errors.Is(err, repositories.ErrTournamentRuleSetInvalid):
		return ErrRuleSetNotFound
	default:
		return fmt.Errorf("tournament storage error: %w", err)
	}
}
