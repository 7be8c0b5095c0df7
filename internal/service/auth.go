// Package service contains the business logic layer: validation, tag
// resolution, and ownership authorization. Services accept plain values,
// return domain errors from apperror, and know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippet-vault/internal/apperror"
	"github.com/sakif/snippet-vault/internal/auth"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/repository"
)

// MaxUsernameLength bounds usernames at registration.
const MaxUsernameLength = 150

// AuthService handles user registration and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new user with a bcrypt-hashed credential. The returned
// user never carries the plaintext password, and its hash is excluded from
// serialization by the model.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "Username field is required.")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be %d characters or less.", MaxUsernameLength))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Password field is required.")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer.")
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords both come back as the same generic unauthorized error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, apperror.Unauthorized("Invalid username or password.")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil, apperror.Unauthorized("Invalid username or password.")
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", nil, apperror.Unauthorized("Invalid username or password.")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.Error("failed to generate token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return "", nil, fmt.Errorf("generating token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))

	return token, user, nil
}
