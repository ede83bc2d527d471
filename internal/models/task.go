package models

import "time"

type Task struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskResult is the body of update, delete and toggle responses.
type TaskResult struct {
	Success   bool   `json:"success"`
	Completed *bool  `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TaskEvent is pushed to a user's open websocket connections after a change.
type TaskEvent struct {
	Type      string `json:"type"`
	TaskID    int    `json:"task_id"`
	Task      *Task  `json:"task,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
}

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
	EventTaskToggled = "task.toggled"
)
