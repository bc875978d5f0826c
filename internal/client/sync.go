package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/localstore"
	"github.com/mrlokans/pharmastudy/internal/media"
)

var (
	ErrNoRemote = errors.New("no API URL configured")
	// ErrLocalSession means the stored session is an on-device one, which
	// the API does not accept.
	ErrLocalSession = errors.New("signed in on this device only: sign in to the API first")
)

// PushResult counts what PushLocal created on the server.
type PushResult struct {
	Chapters   int `json:"chapters"`
	Topics     int `json:"topics"`
	Items      int `json:"items"`
	Flashcards int `json:"flashcards"`
	Images     int `json:"images"`
}

// PushLocal copies chapters that only exist on-device to the API account
// that is signed in, with their topics, items, inline images and
// flashcards. Chapters created under any on-device account are pushed.
// Each chapter is removed locally once it has been pushed completely; a
// chapter that fails partway is deleted from the API again so the push can
// be re-run. The first failure stops the push.
func (c *Client) PushLocal(ctx context.Context) (PushResult, error) {
	var result PushResult
	if c.remote == nil {
		return result, ErrNoRemote
	}

	token, err := localstore.Load[string](ctx, c.store, localstore.KeyToken)
	if err != nil {
		return result, err
	}
	if token == "" {
		return result, errNotSignedIn
	}
	if strings.HasPrefix(token, localTokenPrefix) {
		return result, ErrLocalSession
	}

	chapters, err := c.local.PendingChapters(ctx)
	if err != nil {
		return result, err
	}

	for _, chapter := range chapters {
		pushed, err := c.pushChapter(ctx, chapter)
		if err != nil {
			return result, fmt.Errorf("push chapter %q: %w", chapter.Name, err)
		}
		if err := c.local.forgetChapter(ctx, chapter.ID); err != nil {
			return result, fmt.Errorf("remove pushed chapter %q: %w", chapter.Name, err)
		}
		result.add(pushed)
		c.log.Info("Pushed local chapter", "chapter", chapter.Name)
	}
	return result, nil
}

func (r *PushResult) add(o PushResult) {
	r.Chapters += o.Chapters
	r.Topics += o.Topics
	r.Items += o.Items
	r.Flashcards += o.Flashcards
	r.Images += o.Images
}

// pushChapter creates chapter on the API. When any part of it fails the
// remote chapter is deleted again, which cascades to whatever was created
// under it.
func (c *Client) pushChapter(ctx context.Context, chapter entities.Chapter) (PushResult, error) {
	var result PushResult
	created, err := c.remote.CreateChapter(ctx, entities.NewChapter{
		Name:        chapter.Name,
		Description: chapter.Description,
		Color:       chapter.Color,
	})
	if err != nil {
		return result, err
	}
	result.Chapters++

	if err := c.pushTopics(ctx, created.ID, chapter.Topics, &result); err != nil {
		if derr := c.remote.DeleteChapter(context.WithoutCancel(ctx), created.ID); derr != nil {
			c.log.Warn("Failed to remove partially pushed chapter", "chapter", chapter.Name, "error", derr)
		}
		return PushResult{}, err
	}
	return result, nil
}

func (c *Client) pushTopics(ctx context.Context, chapterID string, topics []entities.Topic, result *PushResult) error {
	for _, topic := range topics {
		createdTopic, err := c.remote.CreateTopic(ctx, chapterID, entities.NewTopic{
			Name:        topic.Name,
			Description: topic.Description,
		})
		if err != nil {
			return err
		}
		result.Topics++

		for _, item := range topic.Items {
			if err := c.pushItem(ctx, createdTopic.ID, item, result); err != nil {
				return fmt.Errorf("item %q: %w", item.Name, err)
			}
		}
	}
	return nil
}

func (c *Client) pushItem(ctx context.Context, topicID string, item entities.Item, result *PushResult) error {
	in := entities.NewItem{
		Name:           item.Name,
		ScientificName: item.ScientificName,
		Type:           item.Type,
		Description:    item.Description,
		ImageURL:       item.ImageURL,
	}
	for _, p := range item.Properties {
		in.Properties = append(in.Properties, entities.PropertyInput{Key: p.Key, Value: p.Value})
	}
	if item.Flashcard != nil {
		in.FlashcardFront = item.Flashcard.Front
		in.FlashcardBack = item.Flashcard.Back
	}

	if item.ImageURL != nil && media.IsDataURI(*item.ImageURL) {
		url, err := c.pushImage(ctx, item.ID, *item.ImageURL)
		if err != nil {
			return err
		}
		in.ImageURL = &url
		result.Images++
	}

	created, err := c.remote.CreateItem(ctx, topicID, in)
	if err != nil {
		return err
	}
	result.Items++

	if created.Flashcard == nil {
		return nil
	}
	result.Flashcards++
	if item.Flashcard != nil && item.Flashcard.Mastered {
		mastered := true
		if _, err := c.remote.UpdateFlashcard(ctx, created.Flashcard.ID, entities.FlashcardPatch{Mastered: &mastered}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) pushImage(ctx context.Context, itemID, dataURI string) (string, error) {
	contentType, data, err := media.DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	ext, ok := media.ExtensionFor(contentType)
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	uploaded, err := c.remote.UploadImage(ctx, itemID+ext, data)
	if err != nil {
		return "", err
	}
	return uploaded.ImageURL, nil
}
