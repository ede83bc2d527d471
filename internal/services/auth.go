package services

import (
	"context"
	"errors"
	"fmt"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/models"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	users  UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup hashes the password, stores the user and issues a token.
// A duplicate email yields models.ErrEmailExists.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (models.AuthResult, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, name, hashed)
	if err != nil {
		return models.AuthResult{}, err
	}
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.AuthResult{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.AuthResult{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// FindOrCreate is the OAuth path: the provider has already verified the
// email, so an existing account is reused and a new one gets an unusable
// random password.
func (s *AuthService) FindOrCreate(ctx context.Context, email, name string) (models.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return s.session(user)
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return models.AuthResult{}, err
	}

	random, err := auth.RandomPassword()
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("random password: %w", err)
	}
	hashed, err := auth.HashPassword(random)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err = s.users.Create(ctx, email, name, hashed)
	if errors.Is(err, models.ErrEmailExists) {
		// Lost a race with a concurrent first login for the same email.
		user, err = s.users.FindByEmail(ctx, email)
	}
	if err != nil {
		return models.AuthResult{}, err
	}
	return s.session(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) session(user models.User) (models.AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return models.AuthResult{}, err
	}
	return models.AuthResult{
		Success: true,
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Token:   token,
	}, nil
}
