package http

import (
	"github.com/mrlokans/pharmastudy/internal/auth"
	"github.com/mrlokans/pharmastudy/internal/database"
	"github.com/mrlokans/pharmastudy/internal/logging"
	"github.com/mrlokans/pharmastudy/internal/media"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Logger   *logging.Logger

	// Content stores
	ChapterStore   ChapterStore
	TopicStore     TopicStore
	ItemStore      ItemStore
	FlashcardStore FlashcardStore
	SearchStore    SearchStore

	// Authentication
	AuthService    Authenticator
	Tokens         TokenIssuer
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter
	TrustHTTPS     bool // enables HSTS
	ReadOnly       bool // rejects content writes with 503

	// CORS
	AllowedOrigins []string

	// Images
	Uploader     ImageUploader
	ImageRemover media.Remover
	MediaDir     string // served under /media when set
	MediaURLPath string

	// Compound lookup (optional)
	Compounds CompoundSearcher

	// Application info
	Version string
}
