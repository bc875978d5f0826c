package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type MediaBackend string

const (
	MediaBackendDisk MediaBackend = "disk"
	MediaBackendGCS  MediaBackend = "gcs"
)

type (
	Config struct {
		HTTP
		Global
		Log
		Database
		Auth
		Media
		Tasks
		Lookup
	}

	HTTP struct {
		Port           int32
		Host           string
		AllowedOrigins []string // CORS; "*" allows any origin
		TrustHTTPS     bool     // send HSTS on HTTPS requests
		ReadOnly       bool     // reject content writes, e.g. during migrations
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Log struct {
		Mode string // "development" or "production"
	}

	Database struct {
		Driver DatabaseDriver
		Path   string // sqlite file path
		DSN    string // postgres connection string
	}

	Auth struct {
		SessionLifetime        time.Duration
		SessionCleanupInterval time.Duration
		BcryptCost             int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Media struct {
		Backend        MediaBackend
		Dir            string // disk backend root
		PublicURL      string // base URL the disk backend serves files from
		MaxUploadBytes int64
		GCSBucket      string
		GCSCDNDomain   string // optional, overrides storage.googleapis.com links
	}

	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}

	Lookup struct {
		BaseURL  string
		CacheTTL time.Duration
		RedisURL string // empty keeps the cache in memory
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("trust_https", false)
	v.SetDefault("read_only", false)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_mode", "development")
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults
	v.SetDefault("auth_session_lifetime", "720h") // 30 days
	v.SetDefault("auth_session_cleanup_interval", "30m")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Media defaults
	v.SetDefault("media_backend", string(MediaBackendDisk))
	v.SetDefault("media_dir", DefaultMediaDir)
	v.SetDefault("media_public_url", "/media")
	v.SetDefault("media_max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("media_gcs_bucket", "")
	v.SetDefault("media_gcs_cdn_domain", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", false)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Compound lookup defaults
	v.SetDefault("lookup_base_url", DefaultLookupBaseURL)
	v.SetDefault("lookup_cache_ttl", "24h")
	v.SetDefault("lookup_redis_url", "")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			TrustHTTPS:     v.GetBool("TRUST_HTTPS"),
			ReadOnly:       v.GetBool("READ_ONLY"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Mode: v.GetString("LOG_MODE"),
		},
		Database: Database{
			Driver: DatabaseDriver(strings.ToLower(v.GetString("DATABASE_DRIVER"))),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			SessionLifetime:        v.GetDuration("AUTH_SESSION_LIFETIME"),
			SessionCleanupInterval: v.GetDuration("AUTH_SESSION_CLEANUP_INTERVAL"),
			BcryptCost:             v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts:       v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:        v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:        v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Media: Media{
			Backend:        MediaBackend(strings.ToLower(v.GetString("MEDIA_BACKEND"))),
			Dir:            v.GetString("MEDIA_DIR"),
			PublicURL:      v.GetString("MEDIA_PUBLIC_URL"),
			MaxUploadBytes: v.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
			GCSBucket:      v.GetString("MEDIA_GCS_BUCKET"),
			GCSCDNDomain:   v.GetString("MEDIA_GCS_CDN_DOMAIN"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Lookup: Lookup{
			BaseURL:  v.GetString("LOOKUP_BASE_URL"),
			CacheTTL: v.GetDuration("LOOKUP_CACHE_TTL"),
			RedisURL: v.GetString("LOOKUP_REDIS_URL"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
