// Package localstore is the on-device key/value store the client falls
// back to when no backend is reachable. Values are JSON documents.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/mrlokans/pharmastudy/internal/config"
)

// Keys used by the client.
const (
	KeyToken      = "pharmastudy_token"
	KeyUser       = "pharmastudy_user"
	KeyUsers      = "pharmastudy_users"
	KeyChapters   = "pharmastudy_chapters"
	KeyFlashcards = "pharmastudy_flashcards"
	KeyQuizzes    = "pharmastudy_quizzes"
)

// AllKeys lists every key the client writes.
var AllKeys = []string{KeyToken, KeyUser, KeyUsers, KeyChapters, KeyFlashcards, KeyQuizzes}

var ErrNotFound = errors.New("key not found")

var validKey = regexp.MustCompile(`^[a-z0-9_]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}

// Store persists raw values by key. Get returns ErrNotFound for keys that
// were never set.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the store selected by the client configuration.
func Open(cfg config.ClientConfig) (Store, error) {
	switch cfg.LocalBackend {
	case config.LocalBackendSQLite:
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "local.db"))
	case config.LocalBackendFile, "":
		return NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unsupported local backend %q", cfg.LocalBackend)
	}
}

// Load decodes the value under key. Missing and unreadable JSON both yield
// the zero value, so a damaged document reads as an empty collection.
func Load[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return v, nil
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, nil
	}
	return v, nil
}

// Save encodes v as JSON under key.
func Save[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
