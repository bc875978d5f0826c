// Package flashcards provides database operations for flashcards and their
// review state.
package flashcards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/ownership"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Repository handles all flashcard database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new flashcards repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func withItemContext(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Item").
		Preload("Item.Properties", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Item.Topic").
		Preload("Item.Topic.Chapter")
}

// ListFlashcards returns the user's flashcards with item, properties,
// topic and chapter attached.
func (r *Repository) ListFlashcards(ctx context.Context, userID string) ([]entities.Flashcard, error) {
	var cards []entities.Flashcard
	err := r.db.WithContext(ctx).
		Scopes(ownership.Flashcards(userID), withItemContext).
		Order("created_at ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	for i := range cards {
		if cards[i].Item != nil {
			cards[i].Item.Hydrate()
		}
	}
	return cards, nil
}

func (r *Repository) get(db *gorm.DB, userID, id string) (*entities.Flashcard, error) {
	var card entities.Flashcard
	err := db.Scopes(ownership.Flashcards(userID)).Where("flashcards.id = ?", id).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Flashcard")
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetFlashcard returns an owned flashcard without item context.
func (r *Repository) GetFlashcard(ctx context.Context, userID, id string) (*entities.Flashcard, error) {
	return r.get(r.db.WithContext(ctx), userID, id)
}

// CreateFlashcard attaches a flashcard to an owned item. An item holds at
// most one flashcard.
func (r *Repository) CreateFlashcard(ctx context.Context, userID string, in entities.NewFlashcard) (*entities.Flashcard, error) {
	card := &entities.Flashcard{ItemID: in.ItemID, Front: in.Front, Back: in.Back}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Item{}).Scopes(ownership.Items(userID)).Where("id = ?", in.ItemID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("Item")
		}

		if err := tx.Model(&entities.Flashcard{}).Where("item_id = ?", in.ItemID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("Flashcard already exists for this item")
		}
		return tx.Omit("Item").Create(card).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create flashcard: %w", err)
	}
	return card, nil
}

// UpdateFlashcard edits the sides and review state. Any change to mastered
// stamps lastReviewed.
func (r *Repository) UpdateFlashcard(ctx context.Context, userID, id string, patch entities.FlashcardPatch) (*entities.Flashcard, error) {
	var updated *entities.Flashcard
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(tx, userID, id); err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.Front != nil {
			updates["front"] = *patch.Front
		}
		if patch.Back != nil {
			updates["back"] = *patch.Back
		}
		if patch.Mastered != nil {
			updates["mastered"] = *patch.Mastered
			updates["last_reviewed"] = r.now()
		}
		if len(updates) > 0 {
			if err := tx.Model(&entities.Flashcard{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		var err error
		updated, err = r.get(tx, userID, id)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update flashcard: %w", err)
	}
	return updated, nil
}

// DeleteFlashcard removes an owned flashcard.
func (r *Repository) DeleteFlashcard(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(tx, userID, id); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Flashcard{}).Error
	})
}
