package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	ErrAccountLocked      = apperr.New(apperr.ErrRateLimited, "account is locked due to too many failed login attempts")
	ErrEmailRequired      = apperr.Validation("email is required")
	ErrEmailInvalid       = apperr.Validation("invalid email format")
	ErrPasswordRequired   = apperr.Validation("password is required")
)

// UserStore is the persistence the service needs. Implemented by
// database/users.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *entities.User) error
	GetUserByID(ctx context.Context, id string) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateLoginState(ctx context.Context, userID string, updates map[string]any) error
}

// Service handles registration and credential checks.
type Service struct {
	users  UserStore
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(users UserStore, cfg config.Auth) *Service {
	return &Service{users: users, config: cfg, now: time.Now}
}

// ValidateEmail checks presence, length (RFC 5321 caps at 254) and format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*entities.User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Repeated
// failures lock the account for the configured duration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			s.recordFailedLogin(ctx, user)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.users.UpdateLoginState(ctx, user.ID, map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	}); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

// recordFailedLogin bumps the counter and locks the account at the threshold.
func (s *Service) recordFailedLogin(ctx context.Context, user *entities.User) {
	user.FailedLoginCount++
	updates := map[string]any{"failed_login_count": user.FailedLoginCount}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockout := s.config.LockoutDuration
		if lockout == 0 {
			lockout = 30 * time.Minute
		}
		lockedUntil := s.now().Add(lockout)
		updates["locked_until"] = lockedUntil
		updates["failed_login_count"] = 0
	}

	_ = s.users.UpdateLoginState(ctx, user.ID, updates)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	return s.users.GetUserByID(ctx, id)
}
