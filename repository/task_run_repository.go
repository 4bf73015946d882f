package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation
const uniqueViolation = "23505"

// TaskRunRepository implements the TaskRunRepository interface
type TaskRunRepository struct {
	q queryable
}

// NewTaskRunRepository creates a new task run repository
func NewTaskRunRepository(db *database.DB) *TaskRunRepository {
	return &TaskRunRepository{q: db.Pool}
}

// GetLatest returns the run with the most recent slot for a task
func (r *TaskRunRepository) GetLatest(ctx context.Context, taskName string) (*models.TaskRun, error) {
	query := `
		SELECT id, task_name, slot, started_at, completed_at, affected, total_amount, summary
		FROM task_runs
		WHERE task_name = $1
		ORDER BY slot DESC
		LIMIT 1
	`

	var run models.TaskRun
	var summaryJSON []byte

	err := r.q.QueryRow(ctx, query, taskName).Scan(
		&run.ID,
		&run.TaskName,
		&run.Slot,
		&run.StartedAt,
		&run.CompletedAt,
		&run.Affected,
		&run.TotalAmount,
		&summaryJSON,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run of task %s: %w", taskName, err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}
	}

	return &run, nil
}

// Create claims a slot for a task
func (r *TaskRunRepository) Create(ctx context.Context, run *models.TaskRun) error {
	query := `
		INSERT INTO task_runs (task_name, slot, started_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query, run.TaskName, run.Slot, run.StartedAt).Scan(&run.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.ErrTaskRunExists
		}
		return fmt.Errorf("failed to create run of task %s for %s: %w",
			run.TaskName, run.Slot.Format(time.RFC3339), err)
	}

	return nil
}

// Complete stores the outcome of a claimed run
func (r *TaskRunRepository) Complete(ctx context.Context, run *models.TaskRun) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	query := `
		UPDATE task_runs
		SET completed_at = $2, affected = $3, total_amount = $4, summary = $5
		WHERE id = $1
	`

	_, err = r.q.Exec(ctx, query, run.ID, run.CompletedAt, run.Affected, run.TotalAmount, summaryJSON)
	if err != nil {
		return fmt.Errorf("failed to complete run %d of task %s: %w", run.ID, run.TaskName, err)
	}

	return nil
}
