package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/config"
)

// SessionKeyUserID is the session field holding the owner of a token.
const SessionKeyUserID = "user_id"

var ErrInvalidToken = apperr.Unauthorized("invalid or expired token")

// SessionManager uses scs sessions as opaque bearer tokens: the session
// token is handed to the client and presented back in the Authorization
// header instead of a cookie.
type SessionManager struct {
	*scs.SessionManager
	stop func()
}

// NewSessionManager persists sessions in the sqlite database when the
// server runs on sqlite, and in memory otherwise.
func NewSessionManager(sqlDB *sql.DB, driver config.DatabaseDriver, cfg config.Auth) (*SessionManager, error) {
	cleanup := cfg.SessionCleanupInterval
	if cleanup <= 0 {
		cleanup = 30 * time.Minute
	}

	sm := scs.New()
	sm.Lifetime = cfg.SessionLifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 30 * 24 * time.Hour
	}

	var stop func()
	switch driver {
	case config.DriverSQLite, "":
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		store := sqlite3store.NewWithCleanupInterval(sqlDB, cleanup)
		sm.Store = store
		stop = store.StopCleanup
	default:
		store := memstore.NewWithCleanupInterval(cleanup)
		sm.Store = store
		stop = store.StopCleanup
	}

	return &SessionManager{SessionManager: sm, stop: stop}, nil
}

// Issue creates a session for userID and returns its token.
func (sm *SessionManager) Issue(ctx context.Context, userID string) (string, error) {
	ctx, err := sm.Load(ctx, "")
	if err != nil {
		return "", err
	}
	sm.Put(ctx, SessionKeyUserID, userID)
	token, _, err := sm.Commit(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id a token belongs to.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	ctx, err := sm.Load(ctx, token)
	if err != nil {
		return "", err
	}
	userID := sm.GetString(ctx, SessionKeyUserID)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Revoke deletes the session behind token. Unknown tokens are ignored.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	ctx, err := sm.Load(ctx, token)
	if err != nil {
		return err
	}
	return sm.Destroy(ctx)
}

// Close stops the store's background cleanup.
func (sm *SessionManager) Close() {
	if sm.stop != nil {
		sm.stop()
	}
}
