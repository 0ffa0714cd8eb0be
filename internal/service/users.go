package service

import (
	"context"
	"crypto/sha256"
	"fmt"

	"sapar/internal/models"
	"sapar/internal/repository"
)

// UserService creates accounts. Authentication itself lives in the
// middleware, which talks to the cache and the user store directly.
type UserService struct {
	users repository.UserStore
}

// Register creates an active user with the given role.
func (s *UserService) Register(ctx context.Context, email, password, fullName, role string) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s already exists", email)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: HashPassword(password),
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// HashPassword returns the hex SHA-256 digest stored in users.password_hash.
func HashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hash)
}
