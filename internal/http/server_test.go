package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pharmastudy/internal/auth"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/database"
	"github.com/mrlokans/pharmastudy/internal/database/chapters"
	"github.com/mrlokans/pharmastudy/internal/database/dbtest"
	"github.com/mrlokans/pharmastudy/internal/database/flashcards"
	"github.com/mrlokans/pharmastudy/internal/database/items"
	"github.com/mrlokans/pharmastudy/internal/database/search"
	"github.com/mrlokans/pharmastudy/internal/database/topics"
	"github.com/mrlokans/pharmastudy/internal/database/users"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/lookup"
	"github.com/mrlokans/pharmastudy/internal/media"
)

// recordingRemover captures image removals instead of deleting anything.
type recordingRemover struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordingRemover) RemoveImages(_ context.Context, urls ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, urls...)
}

func (r *recordingRemover) removed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

type stubCompounds map[string]*lookup.Compound

func (s stubCompounds) Search(_ context.Context, name string) (*lookup.Compound, error) {
	return s[name], nil
}

type testServer struct {
	router   *gin.Engine
	remover  *recordingRemover
	mediaDir string
	limiter  *auth.RateLimiter
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	authCfg := config.Auth{SessionLifetime: time.Hour, BcryptCost: 4, MaxLoginAttempts: 10, LockoutDuration: time.Hour}
	sessions, err := auth.NewSessionManager(sqlDB, config.DriverSQLite, authCfg)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	limiter := auth.NewRateLimiter(auth.RateLimitConfig{MaxAttempts: 3, Window: time.Minute, LockoutDuration: time.Minute})
	t.Cleanup(limiter.Stop)

	mediaDir := t.TempDir()
	store, err := media.NewDiskStore(mediaDir, "/media")
	require.NoError(t, err)

	userRepo := users.NewRepository(db)
	remover := &recordingRemover{}

	router := NewRouter(RouterConfig{
		Database:       &database.Database{DB: db, Driver: config.DriverSQLite},
		ChapterStore:   chapters.NewRepository(db),
		TopicStore:     topics.NewRepository(db),
		ItemStore:      items.NewRepository(db),
		FlashcardStore: flashcards.NewRepository(db),
		SearchStore:    search.NewRepository(db),
		AuthService:    auth.NewService(userRepo, authCfg),
		Tokens:         sessions,
		AuthMiddleware: auth.NewMiddleware(sessions, userRepo),
		RateLimiter:    limiter,
		Uploader:       media.NewUploader(store, 1024),
		ImageRemover:   remover,
		MediaDir:       mediaDir,
		MediaURLPath:   "/media",
		Compounds: stubCompounds{"aspirin": {
			CID: 2244, Name: "aspirin", MolecularFormula: "C9H8O4", MolecularWeight: "180.16",
		}},
		Version: "test",
	})

	return &testServer{router: router, remover: remover, mediaDir: mediaDir, limiter: limiter}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token.
func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"name": "Student", "email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result entities.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) createChapter(t *testing.T, token, name string) entities.Chapter {
	t.Helper()
	w := s.do(t, http.MethodPost, "/chapters", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Chapter](t, w)
}

func (s *testServer) createTopic(t *testing.T, token, chapterID, name string) entities.Topic {
	t.Helper()
	w := s.do(t, http.MethodPost, "/topics/"+chapterID, token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Topic](t, w)
}

func (s *testServer) createItem(t *testing.T, token, topicID string, body gin.H) entities.Item {
	t.Helper()
	w := s.do(t, http.MethodPost, "/items/"+topicID, token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Item](t, w)
}
