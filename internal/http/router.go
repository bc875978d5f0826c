package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(cfg.Logger))
	router.Use(gin.Recovery())
	router.Use(CORS(cfg.AllowedOrigins))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.TrustHTTPS {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}
	if cfg.ReadOnly {
		router.Use(ReadOnly())
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Uploaded images on the disk media backend
	if cfg.MediaDir != "" && cfg.MediaURLPath != "" {
		router.Static(cfg.MediaURLPath, cfg.MediaDir)
	}

	// The API answers both at the root and under /api.
	registerAPIRoutes(router.Group(""), cfg)
	registerAPIRoutes(router.Group("/api"), cfg)

	return router
}

func registerAPIRoutes(group *gin.RouterGroup, cfg RouterConfig) {
	// Public auth routes
	authController := NewAuthController(cfg.AuthService, cfg.Tokens, cfg.RateLimiter)
	group.POST("/auth/register", authController.Register)
	group.POST("/auth/login", authController.Login)

	protected := group.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.Handler())
	}

	protected.GET("/auth/me", authController.Me)
	protected.POST("/auth/logout", authController.Logout)

	// Chapter endpoints
	chapters := NewChaptersController(cfg.ChapterStore, cfg.ImageRemover)
	protected.GET("/chapters", chapters.ListChapters)
	protected.POST("/chapters", chapters.CreateChapter)
	protected.PUT("/chapters/:id", chapters.UpdateChapter)
	protected.DELETE("/chapters/:id", chapters.DeleteChapter)

	// Topic endpoints
	topics := NewTopicsController(cfg.TopicStore, cfg.ImageRemover)
	protected.POST("/topics/:chapterId", topics.CreateTopic)
	protected.PUT("/topics/:id", topics.UpdateTopic)
	protected.DELETE("/topics/:id", topics.DeleteTopic)

	// Item endpoints; the static upload path takes precedence over :topicId
	items := NewItemsController(cfg.ItemStore, cfg.Uploader, cfg.ImageRemover)
	protected.POST("/items/upload", items.UploadImage)
	protected.POST("/items/:topicId", items.CreateItem)
	protected.PUT("/items/:id", items.UpdateItem)
	protected.DELETE("/items/:id", items.DeleteItem)

	// Flashcard endpoints
	flashcards := NewFlashcardsController(cfg.FlashcardStore)
	protected.GET("/flashcards", flashcards.ListFlashcards)
	protected.POST("/flashcards", flashcards.CreateFlashcard)
	protected.PUT("/flashcards/:id", flashcards.UpdateFlashcard)
	protected.DELETE("/flashcards/:id", flashcards.DeleteFlashcard)

	// Search
	search := NewSearchController(cfg.SearchStore)
	protected.GET("/search", search.Search)

	// Compound lookup (optional)
	if cfg.Compounds != nil {
		lookupController := NewLookupController(cfg.Compounds)
		protected.GET("/lookup/compounds", lookupController.LookupCompound)
	}
}
