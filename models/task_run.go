package models

import (
	"time"
)

// TaskRun records one execution of a scheduled task.
// Slot is the due time the run was claimed for; a task never runs twice for the same slot.
type TaskRun struct {
	ID          int64                  `db:"id" json:"id"`
	TaskName    string                 `db:"task_name" json:"task_name"`
	Slot        time.Time              `db:"slot" json:"slot"`
	StartedAt   time.Time              `db:"started_at" json:"started_at"`
	CompletedAt *time.Time             `db:"completed_at" json:"completed_at,omitempty"`
	Affected    int                    `db:"affected" json:"affected"`
	TotalAmount int64                  `db:"total_amount" json:"total_amount"`
	Summary     map[string]interface{} `db:"-" json:"summary,omitempty"`
}
