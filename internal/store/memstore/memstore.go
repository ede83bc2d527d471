// Package memstore is an in-process implementation of the user and task
// repositories. It backs STORAGE_DRIVER=memory and the HTTP tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"task-manager-backend/internal/models"
)

type Store struct {
	mu         sync.RWMutex
	users      map[int]models.User
	emails     map[string]int
	tasks      map[int]models.Task
	nextUserID int
	nextTaskID int
	now        func() time.Time
}

func New() *Store {
	return &Store{
		users:  make(map[int]models.User),
		emails: make(map[string]int),
		tasks:  make(map[int]models.Task),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Users and Tasks expose the store through the method sets the services expect.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }
func (s *Store) Tasks() *TaskStore { return &TaskStore{s: s} }

func (s *Store) PingContext(ctx context.Context) error { return ctx.Err() }

type UserStore struct{ s *Store }

func (u *UserStore) Create(_ context.Context, email, name, passwordHash string) (models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[email]; taken {
		return models.User{}, models.ErrEmailExists
	}

	s.nextUserID++
	now := s.now()
	user := models.User{
		ID:           s.nextUserID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user
	s.emails[email] = user.ID
	return user, nil
}

func (u *UserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return s.users[id], nil
}

func (u *UserStore) FindByID(_ context.Context, id int) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

type TaskStore struct{ s *Store }

func (t *TaskStore) Create(_ context.Context, userID int, title, description string) (models.Task, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTaskID++
	now := s.now()
	task := models.Task{
		ID:          s.nextTaskID,
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[task.ID] = task
	return task, nil
}

func (t *TaskStore) ListByUser(_ context.Context, userID int) ([]models.Task, error) {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *TaskStore) Update(_ context.Context, taskID, userID int, title, description string, completed bool) (models.Task, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.owned(taskID, userID)
	if !ok {
		return models.Task{}, models.ErrTaskNotFound
	}
	task.Title = title
	task.Description = description
	task.Completed = completed
	task.UpdatedAt = s.now()
	s.tasks[taskID] = task
	return task, nil
}

func (t *TaskStore) Delete(_ context.Context, taskID, userID int) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(taskID, userID); !ok {
		return models.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (t *TaskStore) Toggle(_ context.Context, taskID, userID int) (bool, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.owned(taskID, userID)
	if !ok {
		return false, models.ErrTaskNotFound
	}
	task.Completed = !task.Completed
	task.UpdatedAt = s.now()
	s.tasks[taskID] = task
	return task.Completed, nil
}

// owned must be called with s.mu held.
func (s *Store) owned(taskID, userID int) (models.Task, bool) {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return models.Task{}, false
	}
	return task, true
}
