package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
)

var ErrInvalidCategoryData = errors.New("invalid category data")

type CategoryService interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error)
	// Enroll adds the athlete to the category roster. Enrolling an already
	// enrolled athlete is a no-op.
	Enroll(ctx context.Context, categoryID, athleteID int) error
	// Delete removes the category and all of its matches.
	Delete(ctx context.Context, id int) error
}

type categoryService struct {
	db          *sql.DB
	repo        repositories.CategoryRepository
	matchRepo   repositories.MatchRepository
	athleteRepo repositories.AthleteRepository
}

func NewCategoryService(db *sql.DB, repo repositories.CategoryRepository, matchRepo repositories.MatchRepository, athleteRepo repositories.AthleteRepository) CategoryService {
	return &categoryService{db: db, repo: repo, matchRepo: matchRepo, athleteRepo: athleteRepo}
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategoryData)
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrCategoryTournamentInvalid) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return category, nil
}

func (s *categoryService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error) {
	return s.repo.ListByTournament(ctx, tournamentID)
}

func (s *categoryService) Enroll(ctx context.Context, categoryID, athleteID int) error {
	if _, err := s.athleteRepo.GetByID(ctx, athleteID); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return ErrAthleteNotFound
		}
		return fmt.Errorf("failed to check athlete %d: %w", athleteID, err)
	}
	if err := s.repo.AddAthlete(ctx, categoryID, athleteID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to enroll athlete %d in category %d: %w", athleteID, categoryID, err)
	}
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.DeleteByCategory(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to delete category matches: %w", err)
	}
	if err := s.repo.Delete(ctx, tx, id); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return tx.Commit()
}
