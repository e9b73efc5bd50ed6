package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

var ErrRuleSetNotFound = errors.New("rule set not found")

type RuleSetRepository interface {
	Create(ctx context.Context, ruleSet *models.RuleSet) error
	GetByID(ctx context.Context, id int) (*models.RuleSet, error)
	List(ctx context.Context) ([]*models.RuleSet, error)
}

type postgresRuleSetRepository struct {
	db *sql.DB
}

func NewPostgresRuleSetRepository(db *sql.DB) RuleSetRepository {
	return &postgresRuleSetRepository{db: db}
}

func (r *postgresRuleSetRepository) Create(ctx context.Context, ruleSet *models.RuleSet) error {
	pointsJSON, err := json.Marshal(ruleSet.Points)
	if err != nil {
		return fmt.Errorf("failed to encode points config: %w", err)
	}

	query := `
		INSERT INTO rule_sets (name, duration_seconds, points, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		ruleSet.Name,
		ruleSet.DurationSeconds,
		pointsJSON,
		ruleSet.Description,
	).Scan(&ruleSet.ID, &ruleSet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rule set: %w", err)
	}
	return nil
}

func (r *postgresRuleSetRepository) GetByID(ctx context.Context, id int) (*models.RuleSet, error) {
	query := `SELECT id, name, duration_seconds, points, description, created_at FROM rule_sets WHERE id = $1`
	ruleSet, err := scanRuleSet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleSetNotFound
		}
		return nil, fmt.Errorf("failed to scan rule set %d: %w", id, err)
	}
	return ruleSet, nil
}

func (r *postgresRuleSetRepository) List(ctx context.Context) ([]*models.RuleSet, error) {
	query := `SELECT id, name, duration_seconds, points, description, created_at FROM rule_sets ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule sets: %w", err)
	}
	defer rows.Close()

	ruleSets := make([]*models.RuleSet, 0)
	for rows.Next() {
		ruleSet, scanErr := scanRuleSet(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan rule set row: %w", scanErr)
		}
		ruleSets = append(ruleSets, ruleSet)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rule set rows iteration: %w", err)
	}
	return ruleSets, nil
}

func scanRuleSet(row rowScanner) (*models.RuleSet, error) {
	ruleSet := &models.RuleSet{}
	var pointsJSON []byte
	err := row.Scan(
		&ruleSet.ID,
		&ruleSet.Name,
		&ruleSet.DurationSeconds,
		&pointsJSON,
		&ruleSet.Description,
		&ruleSet.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pointsJSON, &ruleSet.Points); err != nil {
		return nil, fmt.Errorf("failed to decode points config for rule set %d: %w", ruleSet.ID, err)
	}
	return ruleSet, nil
}
