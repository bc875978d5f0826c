package http

import (
	"context"
	"io"

	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/lookup"
)

// This file consolidates all store interface definitions used by HTTP controllers.
// Each controller depends only on the operations it calls; the database
// repositories satisfy them.

// ChapterStore is implemented by database/chapters.Repository.
type ChapterStore interface {
	ListChapters(ctx context.Context, userID string) ([]entities.Chapter, error)
	CreateChapter(ctx context.Context, userID string, in entities.NewChapter) (*entities.Chapter, error)
	UpdateChapter(ctx context.Context, userID, id string, patch entities.ChapterPatch) (*entities.Chapter, error)
	DeleteChapter(ctx context.Context, userID, id string) ([]string, error)
}

// TopicStore is implemented by database/topics.Repository.
type TopicStore interface {
	CreateTopic(ctx context.Context, userID, chapterID string, in entities.NewTopic) (*entities.Topic, error)
	UpdateTopic(ctx context.Context, userID, id string, patch entities.TopicPatch) (*entities.Topic, error)
	DeleteTopic(ctx context.Context, userID, id string) ([]string, error)
}

// ItemStore is implemented by database/items.Repository.
type ItemStore interface {
	CreateItem(ctx context.Context, userID, topicID string, in entities.NewItem) (*entities.Item, error)
	UpdateItem(ctx context.Context, userID, id string, patch entities.ItemPatch) (*entities.Item, error)
	DeleteItem(ctx context.Context, userID, id string) (*entities.Item, error)
}

// FlashcardStore is implemented by database/flashcards.Repository.
type FlashcardStore interface {
	ListFlashcards(ctx context.Context, userID string) ([]entities.Flashcard, error)
	CreateFlashcard(ctx context.Context, userID string, in entities.NewFlashcard) (*entities.Flashcard, error)
	UpdateFlashcard(ctx context.Context, userID, id string, patch entities.FlashcardPatch) (*entities.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID, id string) error
}

// SearchStore is implemented by database/search.Repository.
type SearchStore interface {
	Search(ctx context.Context, userID, query, typ string) (entities.SearchResults, error)
}

// ImageUploader is implemented by media.Uploader.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (entities.UploadResult, error)
	MaxBytes() int64
}

// CompoundSearcher is implemented by lookup.Service.
type CompoundSearcher interface {
	Search(ctx context.Context, name string) (*lookup.Compound, error)
}

// Authenticator is implemented by auth.Service.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*entities.User, error)
	Authenticate(ctx context.Context, email, password string) (*entities.User, error)
}

// TokenIssuer is implemented by auth.SessionManager.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, token string) error
}
