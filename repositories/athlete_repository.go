package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

var ErrAthleteNotFound = errors.New("athlete not found")

type AthleteRepository interface {
	Create(ctx context.Context, athlete *models.Athlete) error
	GetByID(ctx context.Context, id int) (*models.Athlete, error)
	List(ctx context.Context, limit, offset int) ([]*models.Athlete, error)
	// ListLeaderboard returns athletes ordered by ranking points, best first.
	ListLeaderboard(ctx context.Context, limit int) ([]*models.Athlete, error)
	Update(ctx context.Context, athlete *models.Athlete) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	// IncrementStats applies a match-result delta in a single UPDATE so the
	// counters stay consistent without a surrounding transaction.
	IncrementStats(ctx context.Context, id int, delta models.AthleteStatsDelta) error
	Delete(ctx context.Context, id int) error
}

type postgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) AthleteRepository {
	return &postgresAthleteRepository{db: db}
}

const athleteColumns = `
	id, name, nickname, academy, belt, weight, gender, birth_date, age,
	photo_key, wins, losses, submissions, points_scored, ranking_points,
	balance, created_at`

func (r *postgresAthleteRepository) Create(ctx context.Context, athlete *models.Athlete) error {
	query := `
		INSERT INTO athletes
			(name, nickname, academy, belt, weight, gender, birth_date, age, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		athlete.Name,
		athlete.Nickname,
		athlete.Academy,
		athlete.Belt,
		athlete.Weight,
		athlete.Gender,
		athlete.BirthDate,
		athlete.Age,
		athlete.PhotoKey,
	).Scan(&athlete.ID, &athlete.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert athlete: %w", err)
	}
	return nil
}

func (r *postgresAthleteRepository) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	query := `SELECT` + athleteColumns + ` FROM athletes WHERE id = $1`
	athlete, err := scanAthlete(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to scan athlete %d: %w", id, err)
	}
	return athlete, nil
}

func (r *postgresAthleteRepository) List(ctx context.Context, limit, offset int) ([]*models.Athlete, error) {
	query := `SELECT` + athleteColumns + `
		FROM athletes ORDER BY name ASC LIMIT $1 OFFSET $2`
	return r.listQuery(ctx, query, limit, offset)
}

func (r *postgresAthleteRepository) ListLeaderboard(ctx context.Context, limit int) ([]*models.Athlete, error) {
	query := `SELECT` + athleteColumns + `
		FROM athletes ORDER BY ranking_points DESC, wins DESC, name ASC LIMIT $1`
	return r.listQuery(ctx, query, limit)
}

func (r *postgresAthleteRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]*models.Athlete, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query athletes: %w", err)
	}
	defer rows.Close()

	athletes := make([]*models.Athlete, 0)
	for rows.Next() {
		athlete, scanErr := scanAthlete(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan athlete row: %w", scanErr)
		}
		athletes = append(athletes, athlete)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during athlete rows iteration: %w", err)
	}
	return athletes, nil
}

func (r *postgresAthleteRepository) Update(ctx context.Context, athlete *models.Athlete) error {
	query := `
		UPDATE athletes
		SET name = $1, nickname = $2, academy = $3, belt = $4, weight = $5,
		    gender = $6, birth_date = $7, age = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query,
		athlete.Name,
		athlete.Nickname,
		athlete.Academy,
		athlete.Belt,
		athlete.Weight,
		athlete.Gender,
		athlete.BirthDate,
		athlete.Age,
		athlete.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update athlete %d: %w", athlete.ID, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE athletes SET photo_key = $1 WHERE id = $2`, photoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update photo key for athlete %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) IncrementStats(ctx context.Context, id int, delta models.AthleteStatsDelta) error {
	query := `
		UPDATE athletes
		SET wins = wins + $1,
		    losses = losses + $2,
		    submissions = submissions + $3,
		    points_scored = points_scored + $4,
		    ranking_points = ranking_points + $5,
		    balance = balance + $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		delta.Wins,
		delta.Losses,
		delta.Submissions,
		delta.PointsScored,
		delta.RankingPoints,
		delta.Balance,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment stats for athlete %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM athletes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete athlete %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func scanAthlete(row rowScanner) (*models.Athlete, error) {
	athlete := &models.Athlete{}
	err := row.Scan(
		&athlete.ID,
		&athlete.Name,
		&athlete.Nickname,
		&athlete.Academy,
		&athlete.Belt,
		&athlete.Weight,
		&athlete.Gender,
		&athlete.BirthDate,
		&athlete.Age,
		&athlete.PhotoKey,
		&athlete.Stats.Wins,
		&athlete.Stats.Losses,
		&athlete.Stats.Submissions,
		&athlete.Stats.PointsScored,
		&athlete.RankingPoints,
		&athlete.Balance,
		&athlete.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return athlete, nil
}
