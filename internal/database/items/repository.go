// Package items provides database operations for study items, their
// ordered properties and the optional inline flashcard.
package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/cascade"
	"github.com/mrlokans/pharmastudy/internal/database/ownership"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Repository handles all item database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new items repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithDetails preloads properties (in position order), the flashcard and
// the owning topic.
func WithDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Flashcard").
		Preload("Topic")
}

// GetItem returns an owned item with properties and flashcard.
func (r *Repository) GetItem(ctx context.Context, userID, id string) (*entities.Item, error) {
	return r.getItem(r.db.WithContext(ctx), userID, id)
}

func (r *Repository) getItem(db *gorm.DB, userID, id string) (*entities.Item, error) {
	var item entities.Item
	err := db.Scopes(ownership.Items(userID), WithDetails).Where("items.id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Item")
	}
	if err != nil {
		return nil, err
	}
	item.Hydrate()
	item.Topic = nil
	return &item, nil
}

// CreateItem adds an item to an owned topic. Properties keep the given
// order; a flashcard is created when both sides are present.
func (r *Repository) CreateItem(ctx context.Context, userID, topicID string, in entities.NewItem) (*entities.Item, error) {
	var created *entities.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Topic{}).Scopes(ownership.Topics(userID)).Where("id = ?", topicID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("Topic")
		}

		item := &entities.Item{
			TopicID:        topicID,
			Name:           in.Name,
			ScientificName: in.ScientificName,
			Type:           in.Type,
			Description:    in.Description,
			ImageURL:       in.ImageURL,
		}
		if err := tx.Omit("Properties", "Flashcard", "Topic").Create(item).Error; err != nil {
			return err
		}

		if props := entities.BuildProperties(item.ID, in.Properties); len(props) > 0 {
			if err := tx.Create(&props).Error; err != nil {
				return err
			}
		}

		if in.HasFlashcard() {
			card := &entities.Flashcard{ItemID: item.ID, Front: in.FlashcardFront, Back: in.FlashcardBack}
			if err := tx.Omit("Item").Create(card).Error; err != nil {
				return err
			}
		}

		var err error
		created, err = r.getItem(tx, userID, item.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return created, nil
}

// UpdateItem applies the non-nil fields of patch. A non-nil property list
// replaces the stored properties wholesale in the same transaction.
func (r *Repository) UpdateItem(ctx context.Context, userID, id string, patch entities.ItemPatch) (*entities.Item, error) {
	var updated *entities.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.getItem(tx, userID, id); err != nil {
			return err
		}

		if updates := patch.Updates(); len(updates) > 0 {
			if err := tx.Model(&entities.Item{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if patch.Properties != nil {
			if err := tx.Where("item_id = ?", id).Delete(&entities.Property{}).Error; err != nil {
				return err
			}
			if props := entities.BuildProperties(id, *patch.Properties); len(props) > 0 {
				if err := tx.Create(&props).Error; err != nil {
					return err
				}
			}
			// Touch the item so updatedAt reflects the property change.
			if err := tx.Model(&entities.Item{}).Where("id = ?", id).Update("updated_at", time.Now()).Error; err != nil {
				return err
			}
		}

		var err error
		updated, err = r.getItem(tx, userID, id)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

// DeleteItem removes an owned item with its properties and flashcard. The
// deleted item is returned so the caller can release its image.
func (r *Repository) DeleteItem(ctx context.Context, userID, id string) (*entities.Item, error) {
	var deleted *entities.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := r.getItem(tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := cascade.DeleteItems(tx, []string{id}); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
