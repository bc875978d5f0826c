// Package auth provides account registration, credential checks and bearer
// token authentication for the API.
//
// Tokens are scs sessions: login commits a session holding the user id and
// returns its token, which clients send as "Authorization: Bearer <token>".
// On sqlite the sessions live in the same database (sqlite3store); on
// postgres they are kept in memory.
//
// # Configuration
//
//	AUTH_SESSION_LIFETIME=720h          # Token lifetime
//	AUTH_SESSION_CLEANUP_INTERVAL=30m   # Expired session sweep
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failures before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Database.Driver, cfg.Auth)
//	api.Use(auth.NewMiddleware(sessions, authService).Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
