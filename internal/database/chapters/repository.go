// Package chapters provides database operations for chapters and loads the
// full chapter → topic → item tree.
//
// This package implements the ChapterStore interface defined in internal/http.
package chapters

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

// Repository handles all chapter database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new chapters repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTree preloads topics, items, properties and flashcards in display order.
func WithTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Topics", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, created_at ASC") }).
		Preload("Topics.Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Topics.Items.Properties", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Topics.Items.Flashcard")
}

// ListChapters returns the user's chapters with full nesting, ordered by order.
func (r *Repository) ListChapters(ctx context.Context, userID string) ([]entities.Chapter, error) {
	var chapters []entities.Chapter
	err := r.db.WithContext(ctx).
		Scopes(ownership.Chapters(userID), WithTree).
		Order("sort_order ASC, created_at ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	for i := range chapters {
		chapters[i].Hydrate()
	}
	return chapters, nil
}

// GetChapter returns one owned chapter with full nesting.
func (r *Repository) GetChapter(ctx context.Context, userID, id string) (*entities.Chapter, error) {
	var chapter entities.Chapter
	err := r.db.WithContext(ctx).
		Scopes(ownership.Chapters(userID), WithTree).
		Where("chapters.id = ?", id).
		First(&chapter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Chapter")
	}
	if err != nil {
		return nil, err
	}
	chapter.Hydrate()
	return &chapter, nil
}

// CreateChapter appends a chapter after the user's current last one.
func (r *Repository) CreateChapter(ctx context.Context, userID string, in entities.NewChapter) (*entities.Chapter, error) {
	chapter := &entities.Chapter{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		if err := tx.Model(&entities.Chapter{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		chapter.Order = maxOrder + 1
		return tx.Create(chapter).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}

	chapter.Hydrate()
	return chapter, nil
}

// UpdateChapter applies the non-nil fields of patch.
func (r *Repository) UpdateChapter(ctx context.Context, userID, id string, patch entities.ChapterPatch) (*entities.Chapter, error) {
	updates := patch.Updates()
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&entities.Chapter{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update chapter: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperr.NotFound("Chapter")
		}
	}
	return r.GetChapter(ctx, userID, id)
}

// DeleteChapter removes the chapter with its topics and items. It returns
// the image URLs of the removed items so the caller can clean them up.
func (r *Repository) DeleteChapter(ctx context.Context, userID, id string) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Chapter{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("Chapter")
		}
		var err error
		images, err = cascade.DeleteChapter(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}
