package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FedericoSorianox/TorneoBJJ/live"
	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/repositories"
	"github.com/FedericoSorianox/TorneoBJJ/scoring"
)

// Award granted to a match winner, credited to both balance and ranking.
const (
	winAward        = 100
	submissionBonus = 50
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchAlreadyFinished = errors.New("match is already finished")
	ErrWinnerNotInMatch     = errors.New("winner is not an athlete of this match")
	ErrInvalidEvent         = errors.New("invalid match event")
	ErrInvalidTimerAction   = errors.New("invalid timer action")
)

const (
	TimerStart = "start"
	TimerStop  = "stop"
	TimerSync  = "sync"
)

// MatchService drives live matches: it serializes all mutations per match,
// derives the score from the event log on every change, persists before
// broadcasting, and advances winners/losers through the bracket linkage.
// It implements live.MatchOperator.
type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// Snapshot is the join-time read: it takes the match lock so a new
	// subscriber never observes a half-applied operation.
	Snapshot(ctx context.Context, matchID int) (*models.Match, error)

	SubmitEvent(ctx context.Context, matchID int, event models.MatchEvent) error
	EndMatch(ctx context.Context, matchID int, winnerID int, method models.VictoryMethod) error
	TimerAction(ctx context.Context, matchID int, action string, seconds int) error
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	athleteRepo    repositories.AthleteRepository
	tournamentRepo repositories.TournamentRepository
	ruleSetRepo    repositories.RuleSetRepository
	hub            live.Broadcaster
	logger         *slog.Logger
	locks          *matchLocks
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	athleteRepo repositories.AthleteRepository,
	tournamentRepo repositories.TournamentRepository,
	ruleSetRepo repositories.RuleSetRepository,
	hub live.Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		athleteRepo:    athleteRepo,
		tournamentRepo: tournamentRepo,
		ruleSetRepo:    ruleSetRepo,
		hub:            hub,
		logger:         logger,
		locks:          newMatchLocks(),
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateAthletes(ctx, match)
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}

func (s *matchService) Snapshot(ctx context.Context, matchID int) (*models.Match, error) {
	unlock := s.locks.lock(matchID)
	defer unlock()
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.populateAthletes(ctx, match)
	return match, nil
}

// SubmitEvent appends one scoring event (or pops the last one, for undo) and
// recomputes the score from the full log. Undo on an empty log is a no-op.
func (s *matchService) SubmitEvent(ctx context.Context, matchID int, event models.MatchEvent) error {
	unlock := s.locks.lock(matchID)
	defer unlock()

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Status == models.MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}

	if event.Kind == models.EventUndo {
		if len(match.EventLog) > 0 {
			match.EventLog = match.EventLog[:len(match.EventLog)-1]
		}
	} else {
		if !models.IsValidEventKind(event.Kind) {
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, event.Kind)
		}
		if event.Side != models.SideP1 && event.Side != models.SideP2 {
			return fmt.Errorf("%w: unknown side %q", ErrInvalidEvent, event.Side)
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}
		match.EventLog = append(match.EventLog, event)

		// The first scoring event moves a scheduled match to Ongoing; an
		// undo never starts a match.
		if match.Status == models.MatchStatusScheduled {
			match.Status = models.MatchStatusOngoing
		}
	}

	match.Score = scoring.ComputeScore(match.EventLog, s.effectiveSchedule(ctx, match))

	if err := s.matchRepo.UpdateLiveState(ctx, match.ID, match.EventLog, match.Score, match.Status); err != nil {
		return fmt.Errorf("failed to persist match %d: %w", match.ID, err)
	}

	s.broadcastMatch(ctx, match)
	return nil
}

// EndMatch finishes a match, credits the winner's award and career stats,
// debits the loser's loss count and pushes both competitors along their
// bracket linkage. Ending an already finished match is rejected so awards
// can never be applied twice.
func (s *matchService) EndMatch(ctx context.Context, matchID int, winnerID int, method models.VictoryMethod) error {
	unlock := s.locks.lock(matchID)
	defer unlock()

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Status == models.MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}

	winnerIsP1 := match.Athlete1ID != nil && *match.Athlete1ID == winnerID
	winnerIsP2 := match.Athlete2ID != nil && *match.Athlete2ID == winnerID
	if !winnerIsP1 && !winnerIsP2 {
		return ErrWinnerNotInMatch
	}

	match.Status = models.MatchStatusFinished
	match.WinnerID = &winnerID
	if err := s.matchRepo.UpdateResult(ctx, match.ID, match.Status, match.WinnerID); err != nil {
		return fmt.Errorf("failed to persist result for match %d: %w", match.ID, err)
	}

	s.applyStandings(ctx, match, winnerID, winnerIsP1, method)

	var loserID *int
	if winnerIsP1 {
		loserID = match.Athlete2ID
	} else {
		loserID = match.Athlete1ID
	}

	if match.NextMatchDBID != nil && match.WinnerToSlot != nil {
		s.placeAthlete(ctx, *match.NextMatchDBID, *match.WinnerToSlot, winnerID)
	}
	if match.LoserNextMatchDBID != nil && match.LoserToSlot != nil && loserID != nil {
		s.placeAthlete(ctx, *match.LoserNextMatchDBID, *match.LoserToSlot, *loserID)
	}

	s.broadcastMatch(ctx, match)
	return nil
}

// TimerAction relays a countdown control frame to the match room. The
// server keeps no authoritative clock; subscribers stay in sync through the
// relayed start/stop/sync frames. A start on a scheduled match moves it to
// Ongoing, everything else is display state.
func (s *matchService) TimerAction(ctx context.Context, matchID int, action string, seconds int) error {
	switch action {
	case TimerStart, TimerStop, TimerSync:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTimerAction, action)
	}

	unlock := s.locks.lock(matchID)
	defer unlock()

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Status == models.MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}

	if action == TimerStart && match.Status == models.MatchStatusScheduled {
		match.Status = models.MatchStatusOngoing
		if err := s.matchRepo.UpdateLiveState(ctx, match.ID, match.EventLog, match.Score, match.Status); err != nil {
			return fmt.Errorf("failed to persist match %d: %w", match.ID, err)
		}
	}

	s.hub.BroadcastToRoom(live.MatchRoom(match.ID), live.Message{
		Type:    live.TypeTimerUpdate,
		RoomID:  live.MatchRoom(match.ID),
		Payload: map[string]interface{}{"action": action, "seconds": seconds},
	})
	return nil
}

func (s *matchService) loadMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

// effectiveSchedule resolves the match's rule set point schedule, falling
// back to the default IBJJF schedule rather than failing the operation.
func (s *matchService) effectiveSchedule(ctx context.Context, match *models.Match) models.PointsConfig {
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		s.logger.Warn("falling back to default point schedule",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return models.DefaultPointsConfig()
	}
	ruleSet, err := s.ruleSetRepo.GetByID(ctx, tournament.RuleSetID)
	if err != nil {
		s.logger.Warn("falling back to default point schedule",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return models.DefaultPointsConfig()
	}
	return ruleSet.Points
}

// applyStandings issues the competitor-record side effects of a finished
// match. Athlete storage is a separate entity store, so a failed increment
// is logged for reconciliation instead of unwinding the already persisted
// match result.
func (s *matchService) applyStandings(ctx context.Context, match *models.Match, winnerID int, winnerIsP1 bool, method models.VictoryMethod) {
	award := winAward
	submissions := 0
	if method == models.MethodSubmission {
		award += submissionBonus
		submissions = 1
	}

	pointsInMatch := match.Score.P2
	if winnerIsP1 {
		pointsInMatch = match.Score.P1
	}

	winnerDelta := models.AthleteStatsDelta{
		Wins:          1,
		Submissions:   submissions,
		PointsScored:  pointsInMatch,
		RankingPoints: award,
		Balance:       award,
	}
	if err := s.athleteRepo.IncrementStats(ctx, winnerID, winnerDelta); err != nil {
		s.logger.Error("failed to credit winner standing",
			slog.Int("match_id", match.ID), slog.Int("athlete_id", winnerID), slog.Any("error", err))
	}

	var loserID *int
	if winnerIsP1 {
		loserID = match.Athlete2ID
	} else {
		loserID = match.Athlete1ID
	}
	if loserID != nil {
		if err := s.athleteRepo.IncrementStats(ctx, *loserID, models.AthleteStatsDelta{Losses: 1}); err != nil {
			s.logger.Error("failed to record loss",
				slog.Int("match_id", match.ID), slog.Int("athlete_id", *loserID), slog.Any("error", err))
		}
	}
}

// placeAthlete fills one slot of an advancement target and notifies its
// room. The target lock is taken while the source lock is held; advancement
// edges always point at later-created matches, so the ordering is acyclic
// and cannot deadlock.
func (s *matchService) placeAthlete(ctx context.Context, targetMatchID, slot, athleteID int) {
	unlock := s.locks.lock(targetMatchID)
	defer unlock()

	if err := s.matchRepo.UpdateSlot(ctx, targetMatchID, slot, athleteID); err != nil {
		s.logger.Error("failed to advance athlete into match",
			slog.Int("target_match_id", targetMatchID),
			slog.Int("slot", slot),
			slog.Int("athlete_id", athleteID),
			slog.Any("error", err))
		return
	}

	target, err := s.loadMatch(ctx, targetMatchID)
	if err != nil {
		s.logger.Error("failed to reload advanced match",
			slog.Int("target_match_id", targetMatchID), slog.Any("error", err))
		return
	}
	s.broadcastMatch(ctx, target)
}

func (s *matchService) broadcastMatch(ctx context.Context, match *models.Match) {
	s.populateAthletes(ctx, match)
	s.hub.BroadcastToRoom(live.MatchRoom(match.ID), live.Message{
		Type:    live.TypeMatchUpdate,
		RoomID:  live.MatchRoom(match.ID),
		Payload: match,
	})
}

// populateAthletes attaches athlete details for display; lookups are best
// effort and never fail the surrounding operation.
func (s *matchService) populateAthletes(ctx context.Context, match *models.Match) {
	if match.Athlete1ID != nil {
		if a, err := s.athleteRepo.GetByID(ctx, *match.Athlete1ID); err == nil {
			match.Athlete1 = a
		}
	}
	if match.Athlete2ID != nil {
		if a, err := s.athleteRepo.GetByID(ctx, *match.Athlete2ID); err == nil {
			match.Athlete2 = a
		}
	}
}
