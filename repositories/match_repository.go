package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an invalid tournament")
	ErrMatchCategoryInvalid   = errors.New("match references an invalid category")
	ErrMatchAthleteInvalid    = errors.New("match references an invalid athlete")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByCategory(ctx context.Context, categoryID int) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// UpdateLiveState persists the log/score/status triple as one write so a
	// reader can never observe a log without its derived score.
	UpdateLiveState(ctx context.Context, id int, eventLog []models.MatchEvent, score models.MatchScore, status models.MatchStatus) error
	UpdateResult(ctx context.Context, id int, status models.MatchStatus, winnerID *int) error
	UpdateSlot(ctx context.Context, id int, slot int, athleteID int) error
	UpdateAdvancement(ctx context.Context, exec SQLExecutor, id int, nextMatchID, winnerToSlot, loserNextMatchID, loserToSlot *int) error
	DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, category_id, athlete1_id, athlete2_id, winner_id,
	status, score, event_log, round, match_number, bracket_segment,
	next_match_db_id, winner_to_slot, loser_next_match_db_id, loser_to_slot,
	created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	scoreJSON, logJSON, err := marshalLiveState(match.EventLog, match.Score)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(tournament_id, category_id, athlete1_id, athlete2_id, winner_id,
			 status, score, event_log, round, match_number, bracket_segment,
			 next_match_db_id, winner_to_slot, loser_next_match_db_id, loser_to_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.CategoryID,
		match.Athlete1ID,
		match.Athlete2ID,
		match.WinnerID,
		match.Status,
		scoreJSON,
		logJSON,
		match.Round,
		match.MatchNumber,
		match.BracketSegment,
		match.NextMatchDBID,
		match.WinnerToSlot,
		match.LoserNextMatchDBID,
		match.LoserToSlot,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByCategory(ctx context.Context, categoryID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE category_id = $1
		ORDER BY match_number ASC`
	return r.list(ctx, query, categoryID)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE tournament_id = $1
		ORDER BY category_id ASC, match_number ASC`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateLiveState(ctx context.Context, id int, eventLog []models.MatchEvent, score models.MatchScore, status models.MatchStatus) error {
	scoreJSON, logJSON, err := marshalLiveState(eventLog, score)
	if err != nil {
		return err
	}

	query := `UPDATE matches SET event_log = $1, score = $2, status = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, logJSON, scoreJSON, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, status models.MatchStatus, winnerID *int) error {
	query := `UPDATE matches SET status = $1, winner_id = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, winnerID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, id int, slot int, athleteID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET athlete1_id = $1 WHERE id = $2`
	case 2:
		query = `UPDATE matches SET athlete2_id = $1 WHERE id = $2`
	default:
		return fmt.Errorf("invalid slot %d for match %d", slot, id)
	}
	result, err := r.db.ExecContext(ctx, query, athleteID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateAdvancement(ctx context.Context, exec SQLExecutor, id int, nextMatchID, winnerToSlot, loserNextMatchID, loserToSlot *int) error {
	query := `
		UPDATE matches
		SET next_match_db_id = $1, winner_to_slot = $2,
		    loser_next_match_db_id = $3, loser_to_slot = $4
		WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, nextMatchID, winnerToSlot, loserNextMatchID, loserToSlot, id)
	if err != nil {
		return fmt.Errorf("failed to update advancement for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for category %d: %w", categoryID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var scoreJSON, logJSON []byte

	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.CategoryID,
		&match.Athlete1ID,
		&match.Athlete2ID,
		&match.WinnerID,
		&match.Status,
		&scoreJSON,
		&logJSON,
		&match.Round,
		&match.MatchNumber,
		&match.BracketSegment,
		&match.NextMatchDBID,
		&match.WinnerToSlot,
		&match.LoserNextMatchDBID,
		&match.LoserToSlot,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scoreJSON, &match.Score); err != nil {
		return nil, fmt.Errorf("failed to decode score for match %d: %w", match.ID, err)
	}
	if err := json.Unmarshal(logJSON, &match.EventLog); err != nil {
		return nil, fmt.Errorf("failed to decode event log for match %d: %w", match.ID, err)
	}
	return match, nil
}

func marshalLiveState(eventLog []models.MatchEvent, score models.MatchScore) (scoreJSON, logJSON []byte, err error) {
	if eventLog == nil {
		eventLog = []models.MatchEvent{}
	}
	scoreJSON, err = json.Marshal(score)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode score: %w", err)
	}
	logJSON, err = json.Marshal(eventLog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode event log: %w", err)
	}
	return scoreJSON, logJSON, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_category_id_fkey":
			return ErrMatchCategoryInvalid
		case "matches_athlete1_id_fkey", "matches_athlete2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchAthleteInvalid
		}
	}
	return err
}
