package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
)

// SalaryRepository implements the SalaryRepository interface
type SalaryRepository struct {
	q queryable
}

// NewSalaryRepository creates a new role salary repository
func NewSalaryRepository(db *database.DB) *SalaryRepository {
	return &SalaryRepository{q: db.Pool}
}

// LoadAll returns the salary of every configured role
func (r *SalaryRepository) LoadAll(ctx context.Context) (map[string]int64, error) {
	return loadInt64Map(ctx, r.q, `SELECT role_name, amount FROM role_salaries`, "role salaries")
}

// Upsert sets the salary of a role
func (r *SalaryRepository) Upsert(ctx context.Context, role string, amount int64) error {
	query := `
		INSERT INTO role_salaries (role_name, amount) VALUES ($1, $2)
		ON CONFLICT (role_name) DO UPDATE SET amount = EXCLUDED.amount
	`

	if _, err := r.q.Exec(ctx, query, role, amount); err != nil {
		return fmt.Errorf("failed to upsert salary of role %s: %w", role, err)
	}
	return nil
}

// TriviaScoreRepository implements the TriviaScoreRepository interface
type TriviaScoreRepository struct {
	q queryable
}

// NewTriviaScoreRepository creates a new trivia score repository
func NewTriviaScoreRepository(db *database.DB) *TriviaScoreRepository {
	return &TriviaScoreRepository{q: db.Pool}
}

// LoadAll returns every trivia score keyed by user id
func (r *TriviaScoreRepository) LoadAll(ctx context.Context) (map[string]int64, error) {
	return loadInt64Map(ctx, r.q, `SELECT user_id, score FROM trivia_scores`, "trivia scores")
}

// Upsert stores the total score of a user
func (r *TriviaScoreRepository) Upsert(ctx context.Context, userID string, score int64) error {
	query := `
		INSERT INTO trivia_scores (user_id, score) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET score = EXCLUDED.score
	`

	if _, err := r.q.Exec(ctx, query, userID, score); err != nil {
		return fmt.Errorf("failed to upsert trivia score of %s: %w", userID, err)
	}
	return nil
}

func loadInt64Map(ctx context.Context, q queryable, query, what string) (map[string]int64, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return out, nil
}
