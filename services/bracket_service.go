package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/FedericoSorianox/TorneoBJJ/brackets"
	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
)

var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrNotEnoughAthletes      = errors.New("category needs at least two athletes for a bracket")
	ErrUnknownEliminationType = errors.New("unsupported elimination type")
)

// BracketView is the read model for a category's bracket: every match,
// ordered by match number, with athlete details attached.
type BracketView struct {
	Category *models.Category `json:"category"`
	Matches  []*models.Match  `json:"matches"`
}

type BracketService interface {
	// GenerateAndSaveBracket builds the bracket for a category from its
	// enrolled athletes and replaces any previously generated matches.
	GenerateAndSaveBracket(ctx context.Context, categoryID int) ([]*models.Match, error)
	GetBracket(ctx context.Context, categoryID int) (*BracketView, error)
}

type bracketService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	categoryRepo   repositories.CategoryRepository
	tournamentRepo repositories.TournamentRepository
	athleteRepo    repositories.AthleteRepository
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	categoryRepo repositories.CategoryRepository,
	tournamentRepo repositories.TournamentRepository,
	athleteRepo repositories.AthleteRepository,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		matchRepo:      matchRepo,
		categoryRepo:   categoryRepo,
		tournamentRepo: tournamentRepo,
		athleteRepo:    athleteRepo,
		logger:         logger,
	}
}

func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, categoryID int) ([]*models.Match, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category %d: %w", categoryID, err)
	}
	if len(category.AthleteIDs) < 2 {
		return nil, ErrNotEnoughAthletes
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, category.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", category.TournamentID, err)
	}

	generator, err := brackets.New(tournament.DefaultElimination)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownEliminationType, tournament.DefaultElimination)
	}

	competitors := make([]brackets.CompetitorRef, len(category.AthleteIDs))
	for i, id := range category.AthleteIDs {
		competitors[i] = brackets.CompetitorRef(strconv.Itoa(id))
	}

	generated, err := generator.Generate(competitors)
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Regeneration is a full replace: old matches go away along with their
	// event logs.
	if err := s.matchRepo.DeleteByCategory(ctx, tx, categoryID); err != nil {
		return nil, fmt.Errorf("failed to clear previous bracket: %w", err)
	}

	// First pass inserts every match with empty linkage and records the
	// match-number to row-id mapping; the second pass resolves advancement
	// edges through that mapping. Rows are created in match-number order so
	// advancement always points at a later-created row.
	saved := make([]*models.Match, 0, len(generated))
	idByNumber := make(map[int]int, len(generated))
	for _, gm := range generated {
		match := &models.Match{
			TournamentID:   tournament.ID,
			CategoryID:     categoryID,
			Athlete1ID:     refToAthleteID(gm.P1),
			Athlete2ID:     refToAthleteID(gm.P2),
			Status:         models.MatchStatusScheduled,
			EventLog:       []models.MatchEvent{},
			Round:          gm.Round,
			MatchNumber:    gm.MatchNumber,
			BracketSegment: gm.Segment,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("failed to save match %d: %w", gm.MatchNumber, err)
		}
		idByNumber[gm.MatchNumber] = match.ID
		saved = append(saved, match)
	}

	for i, gm := range generated {
		match := saved[i]
		match.NextMatchDBID, match.WinnerToSlot = resolveAdvancement(gm.AdvanceTo, idByNumber)
		match.LoserNextMatchDBID, match.LoserToSlot = resolveAdvancement(gm.LoserAdvanceTo, idByNumber)
		if match.NextMatchDBID == nil && match.LoserNextMatchDBID == nil {
			continue
		}
		err := s.matchRepo.UpdateAdvancement(ctx, tx, match.ID,
			match.NextMatchDBID, match.WinnerToSlot, match.LoserNextMatchDBID, match.LoserToSlot)
		if err != nil {
			return nil, fmt.Errorf("failed to link match %d: %w", gm.MatchNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket: %w", err)
	}

	s.logger.Info("bracket generated",
		slog.Int("category_id", categoryID),
		slog.String("elimination_type", string(tournament.DefaultElimination)),
		slog.Int("matches", len(saved)))
	return saved, nil
}

func (s *bracketService) GetBracket(ctx context.Context, categoryID int) (*BracketView, error) {
	var (
		category *models.Category
		matches  []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		category, err = s.categoryRepo.GetByID(gCtx, categoryID)
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByCategory(gCtx, categoryID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.attachAthletes(ctx, matches)
	return &BracketView{Category: category, Matches: matches}, nil
}

// attachAthletes fills in athlete details for display, fetching each athlete
// once per bracket. Lookups are best effort.
func (s *bracketService) attachAthletes(ctx context.Context, matches []*models.Match) {
	cache := make(map[int]*models.Athlete)
	get := func(id int) *models.Athlete {
		if a, ok := cache[id]; ok {
			return a
		}
		a, err := s.athleteRepo.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("failed to load athlete for bracket view",
				slog.Int("athlete_id", id), slog.Any("error", err))
			a = nil
		}
		cache[id] = a
		return a
	}
	for _, m := range matches {
		if m.Athlete1ID != nil {
			m.Athlete1 = get(*m.Athlete1ID)
		}
		if m.Athlete2ID != nil {
			m.Athlete2 = get(*m.Athlete2ID)
		}
	}
}

// refToAthleteID maps a generated competitor reference to a persisted slot.
// BYE and TBD slots persist as empty; they are filled by advancement or stay
// empty for walkovers.
func refToAthleteID(ref brackets.CompetitorRef) *int {
	if ref == brackets.Bye || ref == brackets.TBD {
		return nil
	}
	id, err := strconv.Atoi(string(ref))
	if err != nil {
		return nil
	}
	return &id
}

func resolveAdvancement(adv *brackets.Advancement, idByNumber map[int]int) (*int, *int) {
	if adv == nil {
		return nil, nil
	}
	dbID, ok := idByNumber[adv.MatchNumber]
	if !ok {
		return nil, nil
	}
	slot := int(adv.Slot)
	return &dbID, &slot
}
