// Package database provides the data access layer for the study content.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── ownership/       # Scopes restricting queries to the caller's records
//	├── cascade/         # Explicit child deletion for chapters, topics, items
//	├── dbtest/          # Temp-dir sqlite databases for package tests
//	├── users/           # Accounts
//	├── chapters/        # Chapter CRUD with the full topic/item tree
//	├── topics/          # Topic CRUD
//	├── items/           # Items, their properties and inline flashcards
//	├── flashcards/      # Flashcard CRUD and review state
//	└── search/          # Case-insensitive search across the tree
//
// # Ownership
//
// Only chapters carry a user id. Topics, items and flashcards are owned
// through their parent chain, so every read and write goes through the
// ownership scopes:
//
//	r.db.Scopes(ownership.Items(userID)).First(&item, "id = ?", id)
//
// A record owned by someone else is indistinguishable from a missing one;
// both surface as apperr.NotFound.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database, log)
//
//	chaptersRepo := chapters.NewRepository(db.DB)
//	list, err := chaptersRepo.ListChapters(ctx, userID)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the store interface from internal/http
//  5. Add compile-time interface check in internal/interfaces
package database
