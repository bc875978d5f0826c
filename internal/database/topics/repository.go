// Package topics provides database operations for topics inside a chapter.
package topics

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/cascade"
	"github.com/mrlokans/pharmastudy/internal/database/ownership"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Repository handles all topic database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new topics repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Properties", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Flashcard")
}

// GetTopic returns an owned topic with its items.
func (r *Repository) GetTopic(ctx context.Context, userID, id string) (*entities.Topic, error) {
	var topic entities.Topic
	err := r.db.WithContext(ctx).
		Scopes(ownership.Topics(userID), withItems).
		Where("topics.id = ?", id).
		First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Topic")
	}
	if err != nil {
		return nil, err
	}
	topic.Hydrate(topic.ChapterID)
	return &topic, nil
}

// CreateTopic appends a topic to an owned chapter.
func (r *Repository) CreateTopic(ctx context.Context, userID, chapterID string, in entities.NewTopic) (*entities.Topic, error) {
	topic := &entities.Topic{
		ChapterID:   chapterID,
		Name:        in.Name,
		Description: in.Description,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Chapter{}).Where("id = ? AND user_id = ?", chapterID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("Chapter")
		}

		var maxOrder int
		if err := tx.Model(&entities.Topic{}).
			Where("chapter_id = ?", chapterID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		topic.Order = maxOrder + 1
		return tx.Create(topic).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	topic.Hydrate(chapterID)
	return topic, nil
}

// UpdateTopic applies the non-nil fields of patch.
func (r *Repository) UpdateTopic(ctx context.Context, userID, id string, patch entities.TopicPatch) (*entities.Topic, error) {
	updates := patch.Updates()
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&entities.Topic{}).
			Scopes(ownership.Topics(userID)).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update topic: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperr.NotFound("Topic")
		}
	}
	return r.GetTopic(ctx, userID, id)
}

// DeleteTopic removes the topic and its items, returning their image URLs.
func (r *Repository) DeleteTopic(ctx context.Context, userID, id string) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Topic{}).Scopes(ownership.Topics(userID)).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("Topic")
		}
		var err error
		images, err = cascade.DeleteTopics(tx, []string{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}
