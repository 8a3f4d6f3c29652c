package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/djenkins26/products-app/internal/repository"
	"github.com/djenkins26/products-app/internal/utils"
	"github.com/rs/zerolog"
)

// AuthService registers users and manages their opaque bearer tokens.
type AuthService struct {
	users repository.UserRepository
	log   zerolog.Logger
}

// NewAuthService creates an AuthService over the given credential store.
func NewAuthService(users repository.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		log:   log.With().Str("component", "auth").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a user with a hashed password and a freshly issued token.
func (s *AuthService) SignUp(ctx context.Context, email, password, confirmation string) (*models.User, error) {
	email = normalizeEmail(email)

	v := validator{}
	v.required("email", email)
	v.required("password", password)
	if password != "" && password != confirmation {
		v["password_confirmation"] = "does not match password"
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	token, err := utils.GenerateToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, HashedPassword: hashed, Token: token}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// SignIn checks credentials and rotates the user's token. The returned user
// carries the new token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.rotateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Token = token
	return user, nil
}

// SignOut invalidates the caller's current token by replacing it with one
// nobody holds.
func (s *AuthService) SignOut(ctx context.Context, caller *models.User) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if _, err := s.rotateToken(ctx, caller.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", caller.ID).Msg("user signed out")
	return nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, caller *models.User, oldPassword, newPassword string) error {
	if caller == nil {
		return ErrUnauthenticated
	}

	v := validator{}
	v.required("new", newPassword)
	if err := v.err(); err != nil {
		return err
	}

	// The caller may come from the token cache, which does not hold the hash.
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(oldPassword, user.HashedPassword) {
		return ErrInvalidCredentials
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user. Unknown and empty tokens
// yield ErrUnauthenticated; store failures are returned as is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return user, nil
}

func (s *AuthService) rotateToken(ctx context.Context, userID string) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("rotate token: %w", err)
	}
	return token, nil
}
