// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - ChapterStore, TopicStore, ItemStore: the study tree (internal/http/stores.go)
//   - FlashcardStore: flashcards and review state (internal/http/stores.go)
//   - SearchStore: name search across the tree (internal/http/stores.go)
//   - UserStore: accounts and login state (internal/auth/service.go)
//
// ## Media Interfaces
//
//   - Store: where image bytes live, on disk, in GCS or inline (internal/media/media.go)
//   - Remover: cleanup after item deletion, inline or queued (internal/media/remover.go)
//
// ## External Service Interfaces
//
//   - Searcher: compound lookup source (internal/lookup/service.go)
//   - Cache: compound cache, in memory or Redis (internal/lookup/cache.go)
//
// ## Client Interfaces
//
//   - Backend: remote, local and fallback access for studyctl (internal/client/backend.go)
//   - localstore.Store: on-device key/value persistence (internal/localstore/store.go)
//
// # Adding a New Media Backend
//
// To store images somewhere else (e.g., S3):
//
//  1. Implement Store in internal/media/
//
//     type S3Store struct {
//         client *s3.Client
//         bucket string
//     }
//
//     func (s *S3Store) Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
//     func (s *S3Store) Delete(ctx context.Context, url string) error
//
//     var _ Store = (*S3Store)(nil)
//
//  2. Add a MEDIA_BACKEND value in internal/config and select it in entrypoint.go
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., study sessions):
//
//  1. Create sub-package: internal/database/sessions/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement the store interface the controller declares in internal/http/stores.go
//
//  4. Add compile-time check in checks.go:
//
//     var _ http.SessionStore = (*sessions.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
