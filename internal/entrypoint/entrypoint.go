package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/auth"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/database"
	"github.com/mrlokans/pharmastudy/internal/database/chapters"
	"github.com/mrlokans/pharmastudy/internal/database/flashcards"
	"github.com/mrlokans/pharmastudy/internal/database/items"
	"github.com/mrlokans/pharmastudy/internal/database/search"
	"github.com/mrlokans/pharmastudy/internal/database/topics"
	"github.com/mrlokans/pharmastudy/internal/database/users"
	http_controllers "github.com/mrlokans/pharmastudy/internal/http"
	"github.com/mrlokans/pharmastudy/internal/logging"
	"github.com/mrlokans/pharmastudy/internal/lookup"
	"github.com/mrlokans/pharmastudy/internal/media"
	"github.com/mrlokans/pharmastudy/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *logging.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", "error", err)
		}
	}()

	// SIGKILL cannot be caught, so only INT and TERM trigger a graceful stop.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server so no new removals are queued
	// against a closing queue.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}

	log.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting pharmastudy", "version", version)

	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", "error", err)
		}
	}()

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get SQL DB for sessions", "error", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, db.Driver, cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize session manager", "error", err)
	}
	defer sessionManager.Close()

	limiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		Window:          cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})
	defer limiter.Stop()

	userRepo := users.NewRepository(db.DB)
	authService := auth.NewService(userRepo, cfg.Auth)

	store, closeStore, err := newMediaStore(cfg.Media)
	if err != nil {
		log.Fatal("Failed to initialize media store", "backend", cfg.Media.Backend, "error", err)
	}
	defer closeStore()

	var remover media.Remover = media.NewInlineRemover(store, log)

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), log)
		if err != nil {
			log.Fatal("Failed to initialize task queue", "error", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("Error closing task client", "error", err)
			}
		}()

		taskClient.Register(tasks.NewRemoveImageQueue(store, log))
		remover = tasks.NewQueuedRemover(taskClient, log)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	compounds, closeLookup := newCompoundService(cfg.Lookup, log)
	defer closeLookup()

	var mediaDir string
	if disk, ok := store.(*media.DiskStore); ok {
		mediaDir = disk.Dir()
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Logger:         log,
		ChapterStore:   chapters.NewRepository(db.DB),
		TopicStore:     topics.NewRepository(db.DB),
		ItemStore:      items.NewRepository(db.DB),
		FlashcardStore: flashcards.NewRepository(db.DB),
		SearchStore:    search.NewRepository(db.DB),
		AuthService:    authService,
		Tokens:         sessionManager,
		AuthMiddleware: auth.NewMiddleware(sessionManager, userRepo),
		RateLimiter:    limiter,
		TrustHTTPS:     cfg.HTTP.TrustHTTPS,
		ReadOnly:       cfg.HTTP.ReadOnly,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Uploader:       media.NewUploader(store, cfg.Media.MaxUploadBytes),
		ImageRemover:   remover,
		MediaDir:       mediaDir,
		MediaURLPath:   cfg.Media.PublicURL,
		Compounds:      compounds,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if taskClient != nil && taskCtxCancel != nil {
			if !taskClient.Stop(ctx) {
				log.Warn("Task queue did not drain before the shutdown timeout")
			}
			taskCtxCancel()
		}
	}

	Serve(router, cfg, log, onShutdown)
}

func newMediaStore(cfg config.Media) (media.Store, func(), error) {
	switch cfg.Backend {
	case config.MediaBackendGCS:
		gcs, err := media.NewGCSStore(context.Background(), cfg.GCSBucket, cfg.GCSCDNDomain)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	case config.MediaBackendDisk, "":
		disk, err := media.NewDiskStore(cfg.Dir, cfg.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return disk, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
	}
}

// newCompoundService puts PubChem behind Redis when LOOKUP_REDIS_URL is set
// and behind an in-process cache otherwise.
func newCompoundService(cfg config.Lookup, log *logging.Logger) (*lookup.Service, func()) {
	source := lookup.NewClient(cfg.BaseURL)

	var cache lookup.Cache = lookup.NewMemoryCache(cfg.CacheTTL)
	closeCache := func() {}
	if cfg.RedisURL != "" {
		redisCache, err := lookup.NewRedisCache(context.Background(), cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Warn("Redis unavailable, caching compounds in memory", "error", err)
		} else {
			cache = redisCache
			closeCache = func() { _ = redisCache.Close() }
		}
	}

	return lookup.NewService(source, cache, log), func() {
		closeCache()
		source.Close()
	}
}
