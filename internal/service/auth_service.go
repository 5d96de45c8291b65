package service

import (
	"context"
	"fmt"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/models"
)

// AuthService handles account registration and login, issuing JWT tokens on
// success.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates an auth service from an authenticator and token
// manager.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager}
}

// Register creates a new account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, string, error) {
	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}
