package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/database/dbtest"
	"github.com/mrlokans/pharmastudy/internal/database/users"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db := dbtest.Open(t)
	return NewService(users.NewRepository(db), config.Auth{
		BcryptCost:       4, // Low cost for faster tests
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Hour,
	})
}

func TestService_Register(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantKind error
	}{
		{name: "valid", email: "student@example.com", password: "password123"},
		{name: "missing email", email: "", password: "password123", wantKind: apperr.ErrValidation},
		{name: "invalid email", email: "not-an-email", password: "password123", wantKind: apperr.ErrValidation},
		{name: "missing password", email: "a@example.com", password: "", wantKind: apperr.ErrValidation},
		{name: "short password", email: "b@example.com", password: "short", wantKind: apperr.ErrValidation},
		{name: "duplicate email", email: "Student@Example.com", password: "password123", wantKind: apperr.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(ctx, "Student", tt.email, tt.password)
			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("Register() error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() unexpected error: %v", err)
			}
			if user.ID == "" || user.PasswordHash == "" || user.PasswordHash == tt.password {
				t.Errorf("Register() returned incomplete user: %+v", user)
			}
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Student", "student@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "STUDENT@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Email != "student@example.com" {
		t.Errorf("Authenticate() email = %q", user.Email)
	}

	if _, err := svc.Authenticate(ctx, "student@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_AuthenticateLockout(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(ctx, "Student", "student@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := 0; i < 3; i++ {
		svc.Authenticate(ctx, "student@example.com", "wrong-password")
	}

	_, err := svc.Authenticate(ctx, "student@example.com", "password123")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected lockout, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.Authenticate(ctx, "student@example.com", "password123"); err != nil {
		t.Errorf("expected login after lockout expiry, got %v", err)
	}
}
