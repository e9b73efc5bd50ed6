package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

var (
	ErrCategoryNotFound          = errors.New("category not found")
	ErrCategoryTournamentInvalid = errors.New("category references an invalid tournament")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error)
	AddAthlete(ctx context.Context, id int, athleteID int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

const categoryColumns = `
	id, tournament_id, name, gender, belt, age_class, weight_class,
	athlete_ids, created_at`

func (r *postgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.AthleteIDs == nil {
		category.AthleteIDs = []int{}
	}
	query := `
		INSERT INTO categories
			(tournament_id, name, gender, belt, age_class, weight_class, athlete_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		category.TournamentID,
		category.Name,
		category.Gender,
		category.Belt,
		category.AgeClass,
		category.WeightClass,
		int64Array(category.AthleteIDs),
	).Scan(&category.ID, &category.CreatedAt)

	return r.handleCategoryError(err)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `SELECT` + categoryColumns + ` FROM categories WHERE id = $1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to scan category %d: %w", id, err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error) {
	query := `SELECT` + categoryColumns + `
		FROM categories WHERE tournament_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", scanErr)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during category rows iteration: %w", err)
	}
	return categories, nil
}

func (r *postgresCategoryRepository) AddAthlete(ctx context.Context, id int, athleteID int) error {
	// array_append only when absent keeps the operation idempotent.
	query := `
		UPDATE categories
		SET athlete_ids = array_append(athlete_ids, $1)
		WHERE id = $2 AND NOT ($1 = ANY(athlete_ids))`
	result, err := r.db.ExecContext(ctx, query, athleteID, id)
	if err != nil {
		return fmt.Errorf("failed to add athlete %d to category %d: %w", athleteID, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Either the category is missing or the athlete was already
		// registered; distinguish the two.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func int64Array(ids []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return arr
}

func scanCategory(row rowScanner) (*models.Category, error) {
	category := &models.Category{}
	var athleteIDs pq.Int64Array
	err := row.Scan(
		&category.ID,
		&category.TournamentID,
		&category.Name,
		&category.Gender,
		&category.Belt,
		&category.AgeClass,
		&category.WeightClass,
		&athleteIDs,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	category.AthleteIDs = make([]int, len(athleteIDs))
	for i, id := range athleteIDs {
		category.AthleteIDs[i] = int(id)
	}
	return category, nil
}

func (r *postgresCategoryRepository) handleCategoryError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "categories_tournament_id_fkey" {
			return ErrCategoryTournamentInvalid
		}
	}
	return err
}
