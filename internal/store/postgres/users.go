package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-manager-backend/internal/models"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, email, name, passwordHash string) (models.User, error) {
	const q = `
INSERT INTO users (email, name, password_hash)
VALUES ($1, $2, $3)
RETURNING id, email, name, password_hash, created_at, updated_at`

	var u models.User
	err := s.db.QueryRowContext(ctx, q, email, name, passwordHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, models.ErrEmailExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const q = `
SELECT id, email, name, password_hash, created_at, updated_at
FROM users
WHERE email = $1`

	return s.scanOne(ctx, q, email)
}

func (s *UserStore) FindByID(ctx context.Context, id int) (models.User, error) {
	const q = `
SELECT id, email, name, password_hash, created_at, updated_at
FROM users
WHERE id = $1`

	return s.scanOne(ctx, q, id)
}

func (s *UserStore) scanOne(ctx context.Context, q string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}
