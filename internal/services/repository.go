package services

import (
	"context"

	"task-manager-backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, email, name, passwordHash string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int) (models.User, error)
}

type TaskRepository interface {
	Create(ctx context.Context, userID int, title, description string) (models.Task, error)
	ListByUser(ctx context.Context, userID int) ([]models.Task, error)
	Update(ctx context.Context, taskID, userID int, title, description string, completed bool) (models.Task, error)
	Delete(ctx context.Context, taskID, userID int) error
	Toggle(ctx context.Context, taskID, userID int) (bool, error)
}

// Publisher receives task change events for a user. Implementations must not block.
type Publisher interface {
	Publish(userID int, event models.TaskEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(int, models.TaskEvent) {}
