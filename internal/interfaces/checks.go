package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/pharmastudy/internal/auth"
	"github.com/mrlokans/pharmastudy/internal/client"
	"github.com/mrlokans/pharmastudy/internal/database/chapters"
	"github.com/mrlokans/pharmastudy/internal/database/flashcards"
	"github.com/mrlokans/pharmastudy/internal/database/items"
	"github.com/mrlokans/pharmastudy/internal/database/search"
	"github.com/mrlokans/pharmastudy/internal/database/topics"
	"github.com/mrlokans/pharmastudy/internal/database/users"
	"github.com/mrlokans/pharmastudy/internal/http"
	"github.com/mrlokans/pharmastudy/internal/localstore"
	"github.com/mrlokans/pharmastudy/internal/lookup"
	"github.com/mrlokans/pharmastudy/internal/media"
	"github.com/mrlokans/pharmastudy/internal/seed"
	"github.com/mrlokans/pharmastudy/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.ChapterStore = (*chapters.Repository)(nil)
var _ http.TopicStore = (*topics.Repository)(nil)
var _ http.ItemStore = (*items.Repository)(nil)
var _ http.FlashcardStore = (*flashcards.Repository)(nil)
var _ http.SearchStore = (*search.Repository)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.UserStore = (*users.Repository)(nil)
var _ auth.UserLoader = (*users.Repository)(nil)
var _ auth.TokenResolver = (*auth.SessionManager)(nil)
var _ http.TokenIssuer = (*auth.SessionManager)(nil)
var _ http.Authenticator = (*auth.Service)(nil)

// =============================================================================
// Media
// =============================================================================

var _ http.ImageUploader = (*media.Uploader)(nil)
var _ media.Store = (*media.DiskStore)(nil)
var _ media.Store = (*media.GCSStore)(nil)
var _ media.Store = media.DataURIStore{}
var _ media.Remover = (*media.InlineRemover)(nil)
var _ media.Remover = (*tasks.QueuedRemover)(nil)
var _ tasks.Enqueuer = (*tasks.Client)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ lookup.Searcher = (*lookup.Client)(nil)
var _ lookup.Cache = (*lookup.MemoryCache)(nil)
var _ lookup.Cache = (*lookup.RedisCache)(nil)
var _ http.CompoundSearcher = (*lookup.Service)(nil)

// =============================================================================
// Client
// =============================================================================

var _ client.Backend = (*client.Client)(nil)
var _ client.Backend = (*client.Remote)(nil)
var _ client.Backend = (*client.Local)(nil)
var _ seed.Target = (*client.Client)(nil)
var _ localstore.Store = (*localstore.FileStore)(nil)
var _ localstore.Store = (*localstore.SQLiteStore)(nil)
