package client

import (
	"context"
	"slices"
	"strings"

	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/localstore"
	"github.com/mrlokans/pharmastudy/internal/logging"
)

// Client routes each call to the API and falls back to the on-device store
// once when the API fails. There are no retries and nothing is re-synced
// automatically; see PushLocal.
type Client struct {
	remote Backend
	local  *Local
	store  localstore.Store
	apiURL string
	log    *logging.Logger
}

// New builds a client. An empty cfg.APIURL keeps every call local.
func New(cfg config.ClientConfig, store localstore.Store, log *logging.Logger) *Client {
	c := &Client{
		local:  NewLocal(store),
		store:  store,
		apiURL: cfg.APIURL,
		log:    logging.OrNop(log),
	}
	if cfg.APIURL != "" {
		c.remote = NewRemote(cfg.APIURL, cfg.Timeout, store)
	}
	return c
}

// Local exposes the on-device backend.
func (c *Client) Local() *Local {
	return c.local
}

// call runs fn against the API when one is configured and against the
// local backend otherwise, or when the API call fails. A cancelled context
// is returned as-is rather than falling back.
func call[T any](ctx context.Context, c *Client, op string, fn func(Backend) (T, error)) (T, error) {
	if c.remote == nil {
		return fn(c.local)
	}
	v, err := fn(c.remote)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return v, ctx.Err()
	}
	c.log.Warn("API call failed, using local store", "op", op, "error", err)
	return fn(c.local)
}

// exec is call for operations without a result.
func exec(ctx context.Context, c *Client, op string, fn func(Backend) error) error {
	_, err := call(ctx, c, op, func(b Backend) (struct{}, error) {
		return struct{}{}, fn(b)
	})
	return err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*entities.AuthResult, error) {
	return call(ctx, c, "register", func(b Backend) (*entities.AuthResult, error) {
		return b.Register(ctx, name, email, password)
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (*entities.AuthResult, error) {
	return call(ctx, c, "login", func(b Backend) (*entities.AuthResult, error) {
		return b.Login(ctx, email, password)
	})
}

func (c *Client) Logout(ctx context.Context) error {
	return exec(ctx, c, "logout", func(b Backend) error { return b.Logout(ctx) })
}

func (c *Client) Me(ctx context.Context) (*entities.User, error) {
	return call(ctx, c, "me", func(b Backend) (*entities.User, error) { return b.Me(ctx) })
}

func (c *Client) ListChapters(ctx context.Context) ([]entities.Chapter, error) {
	return call(ctx, c, "list chapters", func(b Backend) ([]entities.Chapter, error) {
		return b.ListChapters(ctx)
	})
}

func (c *Client) CreateChapter(ctx context.Context, in entities.NewChapter) (*entities.Chapter, error) {
	return call(ctx, c, "create chapter", func(b Backend) (*entities.Chapter, error) {
		return b.CreateChapter(ctx, in)
	})
}

func (c *Client) UpdateChapter(ctx context.Context, id string, patch entities.ChapterPatch) (*entities.Chapter, error) {
	return call(ctx, c, "update chapter", func(b Backend) (*entities.Chapter, error) {
		return b.UpdateChapter(ctx, id, patch)
	})
}

func (c *Client) DeleteChapter(ctx context.Context, id string) error {
	return exec(ctx, c, "delete chapter", func(b Backend) error { return b.DeleteChapter(ctx, id) })
}

func (c *Client) CreateTopic(ctx context.Context, chapterID string, in entities.NewTopic) (*entities.Topic, error) {
	return call(ctx, c, "create topic", func(b Backend) (*entities.Topic, error) {
		return b.CreateTopic(ctx, chapterID, in)
	})
}

func (c *Client) UpdateTopic(ctx context.Context, id string, patch entities.TopicPatch) (*entities.Topic, error) {
	return call(ctx, c, "update topic", func(b Backend) (*entities.Topic, error) {
		return b.UpdateTopic(ctx, id, patch)
	})
}

func (c *Client) DeleteTopic(ctx context.Context, id string) error {
	return exec(ctx, c, "delete topic", func(b Backend) error { return b.DeleteTopic(ctx, id) })
}

func (c *Client) CreateItem(ctx context.Context, topicID string, in entities.NewItem) (*entities.Item, error) {
	return call(ctx, c, "create item", func(b Backend) (*entities.Item, error) {
		return b.CreateItem(ctx, topicID, in)
	})
}

func (c *Client) UpdateItem(ctx context.Context, id string, patch entities.ItemPatch) (*entities.Item, error) {
	return call(ctx, c, "update item", func(b Backend) (*entities.Item, error) {
		return b.UpdateItem(ctx, id, patch)
	})
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return exec(ctx, c, "delete item", func(b Backend) error { return b.DeleteItem(ctx, id) })
}

func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (*entities.UploadResult, error) {
	return call(ctx, c, "upload image", func(b Backend) (*entities.UploadResult, error) {
		return b.UploadImage(ctx, filename, data)
	})
}

func (c *Client) ListFlashcards(ctx context.Context) ([]entities.Flashcard, error) {
	return call(ctx, c, "list flashcards", func(b Backend) ([]entities.Flashcard, error) {
		return b.ListFlashcards(ctx)
	})
}

func (c *Client) CreateFlashcard(ctx context.Context, in entities.NewFlashcard) (*entities.Flashcard, error) {
	return call(ctx, c, "create flashcard", func(b Backend) (*entities.Flashcard, error) {
		return b.CreateFlashcard(ctx, in)
	})
}

func (c *Client) UpdateFlashcard(ctx context.Context, id string, patch entities.FlashcardPatch) (*entities.Flashcard, error) {
	return call(ctx, c, "update flashcard", func(b Backend) (*entities.Flashcard, error) {
		return b.UpdateFlashcard(ctx, id, patch)
	})
}

func (c *Client) DeleteFlashcard(ctx context.Context, id string) error {
	return exec(ctx, c, "delete flashcard", func(b Backend) error { return b.DeleteFlashcard(ctx, id) })
}

func (c *Client) Search(ctx context.Context, query, typ string) (entities.SearchResults, error) {
	return call(ctx, c, "search", func(b Backend) (entities.SearchResults, error) {
		return b.Search(ctx, query, typ)
	})
}

// SaveQuiz stores a quiz on-device, replacing one with the same id.
func (c *Client) SaveQuiz(ctx context.Context, quiz entities.Quiz) (*entities.Quiz, error) {
	c.local.mu.Lock()
	defer c.local.mu.Unlock()

	quizzes, err := localstore.Load[[]entities.Quiz](ctx, c.store, localstore.KeyQuizzes)
	if err != nil {
		return nil, err
	}
	if quiz.ID == "" {
		quiz.ID = entities.NewLocalID("quiz")
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = c.local.now()
	}

	if i := slices.IndexFunc(quizzes, func(q entities.Quiz) bool { return q.ID == quiz.ID }); i >= 0 {
		quizzes[i] = quiz
	} else {
		quizzes = append(quizzes, quiz)
	}
	if err := localstore.Save(ctx, c.store, localstore.KeyQuizzes, quizzes); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ListQuizzes returns saved quizzes, newest first.
func (c *Client) ListQuizzes(ctx context.Context) ([]entities.Quiz, error) {
	quizzes, err := localstore.Load[[]entities.Quiz](ctx, c.store, localstore.KeyQuizzes)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(quizzes, func(a, b entities.Quiz) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return quizzes, nil
}

// Status describes where data is going and what is stored on-device.
type Status struct {
	APIURL        string `json:"apiUrl"`
	Configured    bool   `json:"configured"`
	HasToken      bool   `json:"hasToken"`
	LocalSession  bool   `json:"localSession"`
	LocalUsers    int    `json:"localUsers"`
	LocalChapters int    `json:"localChapters"`
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	status := Status{APIURL: c.apiURL, Configured: c.remote != nil}

	token, err := localstore.Load[string](ctx, c.store, localstore.KeyToken)
	if err != nil {
		return status, err
	}
	status.HasToken = token != ""
	status.LocalSession = strings.HasPrefix(token, localTokenPrefix)

	if status.LocalUsers, err = c.local.CountUsers(ctx); err != nil {
		return status, err
	}
	if status.LocalChapters, err = c.local.CountChapters(ctx); err != nil {
		return status, err
	}
	return status, nil
}
