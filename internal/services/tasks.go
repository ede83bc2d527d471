package services

import (
	"context"

	"task-manager-backend/internal/models"
)

// TaskService runs ownership-scoped CRUD. Missing and foreign tasks both
// surface as models.ErrTaskNotFound.
type TaskService struct {
	tasks  TaskRepository
	events Publisher
}

func NewTaskService(tasks TaskRepository, events Publisher) *TaskService {
	if events == nil {
		events = noopPublisher{}
	}
	return &TaskService{tasks: tasks, events: events}
}

func (s *TaskService) Create(ctx context.Context, userID int, title, description string) (models.Task, error) {
	task, err := s.tasks.Create(ctx, userID, title, description)
	if err != nil {
		return models.Task{}, err
	}
	s.events.Publish(userID, models.TaskEvent{Type: models.EventTaskCreated, TaskID: task.ID, Task: &task})
	return task, nil
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID int) ([]models.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *TaskService) Update(ctx context.Context, taskID, userID int, title, description string, completed bool) error {
	task, err := s.tasks.Update(ctx, taskID, userID, title, description, completed)
	if err != nil {
		return err
	}
	s.events.Publish(userID, models.TaskEvent{Type: models.EventTaskUpdated, TaskID: task.ID, Task: &task})
	return nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID int) error {
	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		return err
	}
	s.events.Publish(userID, models.TaskEvent{Type: models.EventTaskDeleted, TaskID: taskID})
	return nil
}

func (s *TaskService) Toggle(ctx context.Context, taskID, userID int) (bool, error) {
	completed, err := s.tasks.Toggle(ctx, taskID, userID)
	if err != nil {
		return false, err
	}
	s.events.Publish(userID, models.TaskEvent{Type: models.EventTaskToggled, TaskID: taskID, Completed: &completed})
	return completed, nil
}
