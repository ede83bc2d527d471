package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-manager-backend/internal/models"
)

// TaskStore keeps every statement filtered by user_id, so a task owned by
// someone else behaves exactly like a missing one.
type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, userID int, title, description string) (models.Task, error) {
	const q = `
INSERT INTO tasks (user_id, title, description, completed)
VALUES ($1, $2, $3, FALSE)
RETURNING id, user_id, title, description, completed, created_at, updated_at`

	var t models.Task
	err := s.db.QueryRowContext(ctx, q, userID, title, description).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByUser(ctx context.Context, userID int) ([]models.Task, error) {
	const q = `
SELECT id, user_id, title, description, completed, created_at, updated_at
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, taskID, userID int, title, description string, completed bool) (models.Task, error) {
	const q = `
UPDATE tasks
SET title = $1, description = $2, completed = $3, updated_at = NOW()
WHERE id = $4 AND user_id = $5
RETURNING id, user_id, title, description, completed, created_at, updated_at`

	var t models.Task
	err := s.db.QueryRowContext(ctx, q, title, description, completed, taskID, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, models.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("update tasks: %w", err)
	}
	return t, nil
}

func (s *TaskStore) Delete(ctx context.Context, taskID, userID int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete from tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from tasks: %w", err)
	}
	if n == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

// Toggle flips completed in a single statement; concurrent toggles on the
// same row serialize on the row lock instead of losing an update.
func (s *TaskStore) Toggle(ctx context.Context, taskID, userID int) (bool, error) {
	const q = `
UPDATE tasks
SET completed = NOT completed, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING completed`

	var completed bool
	err := s.db.QueryRowContext(ctx, q, taskID, userID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, models.ErrTaskNotFound
	}
	if err != nil {
		return false, fmt.Errorf("flip completed: %w", err)
	}
	return completed, nil
}
