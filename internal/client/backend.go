// Package client is the data-access layer used by studyctl. Every call goes
// to the REST API when one is configured and falls back to the on-device
// store when the API cannot serve it.
package client

import (
	"context"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Backend is implemented by Remote, Local and Client. All three return the
// same entity shapes, so callers never branch on where data came from.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (*entities.AuthResult, error)
	Login(ctx context.Context, email, password string) (*entities.AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*entities.User, error)

	ListChapters(ctx context.Context) ([]entities.Chapter, error)
	CreateChapter(ctx context.Context, in entities.NewChapter) (*entities.Chapter, error)
	UpdateChapter(ctx context.Context, id string, patch entities.ChapterPatch) (*entities.Chapter, error)
	DeleteChapter(ctx context.Context, id string) error

	CreateTopic(ctx context.Context, chapterID string, in entities.NewTopic) (*entities.Topic, error)
	UpdateTopic(ctx context.Context, id string, patch entities.TopicPatch) (*entities.Topic, error)
	DeleteTopic(ctx context.Context, id string) error

	CreateItem(ctx context.Context, topicID string, in entities.NewItem) (*entities.Item, error)
	UpdateItem(ctx context.Context, id string, patch entities.ItemPatch) (*entities.Item, error)
	DeleteItem(ctx context.Context, id string) error
	UploadImage(ctx context.Context, filename string, data []byte) (*entities.UploadResult, error)

	ListFlashcards(ctx context.Context) ([]entities.Flashcard, error)
	CreateFlashcard(ctx context.Context, in entities.NewFlashcard) (*entities.Flashcard, error)
	UpdateFlashcard(ctx context.Context, id string, patch entities.FlashcardPatch) (*entities.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id string) error

	Search(ctx context.Context, query, typ string) (entities.SearchResults, error)
}
