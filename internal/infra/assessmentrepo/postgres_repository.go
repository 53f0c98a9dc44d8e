package assessmentrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/aqi-health/internal/domain/healthrisk"
)

// PostgresRepository implements healthrisk.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts one assessment row.
func (r *PostgresRepository) Save(ctx context.Context, a healthrisk.Assessment) error {
	input, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("encode assessment input: %w", err)
	}
	result, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("encode assessment result: %w", err)
	}
	insights := a.AIInsights
	if insights == nil {
		insights = []string{}
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO assessments (id, subject, location, input, result, pm25, pm10, ai_insights, generated_by, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.Subject, a.Location, string(input), string(result), a.PM25, a.PM10, insights, a.GeneratedBy, a.AssessedAt)
	return err
}

// Latest returns the most recent assessment for subject.
func (r *PostgresRepository) Latest(ctx context.Context, subject string) (healthrisk.Assessment, bool, error) {
	items, err := r.List(ctx, subject, 1)
	if err != nil {
		return healthrisk.Assessment{}, false, err
	}
	if len(items) == 0 {
		return healthrisk.Assessment{}, false, nil
	}
	return items[0], true, nil
}

// Get loads one assessment by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (healthrisk.Assessment, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, subject, location, input, result, pm25, pm10, ai_insights, generated_by, assessed_at
		FROM assessments
		WHERE id = $1
	`, id)
	a, err := scanAssessment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return healthrisk.Assessment{}, false, nil
	}
	if err != nil {
		return healthrisk.Assessment{}, false, err
	}
	return a, true, nil
}

// List returns up to limit assessments for subject, newest first.
func (r *PostgresRepository) List(ctx context.Context, subject string, limit int) ([]healthrisk.Assessment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, subject, location, input, result, pm25, pm10, ai_insights, generated_by, assessed_at
		FROM assessments
		WHERE subject = $1
		ORDER BY assessed_at DESC
		LIMIT $2
	`, subject, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []healthrisk.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (healthrisk.Assessment, error) {
	var (
		a      healthrisk.Assessment
		input  []byte
		result []byte
	)
	if err := row.Scan(&a.ID, &a.Subject, &a.Location, &input, &result, &a.PM25, &a.PM10, &a.AIInsights, &a.GeneratedBy, &a.AssessedAt); err != nil {
		return healthrisk.Assessment{}, err
	}
	if err := json.Unmarshal(input, &a.Input); err != nil {
		return healthrisk.Assessment{}, fmt.Errorf("decode assessment input: %w", err)
	}
	if err := json.Unmarshal(result, &a.Result); err != nil {
		return healthrisk.Assessment{}, fmt.Errorf("decode assessment result: %w", err)
	}
	return a, nil
}

var _ healthrisk.Repository = (*PostgresRepository)(nil)
