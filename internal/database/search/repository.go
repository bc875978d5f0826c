// Package search provides case-insensitive substring search over a user's
// items, chapters and topics.
package search

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/ownership"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Repository runs search queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new search repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Search matches query against item name, scientific name, description and
// property keys/values, and against chapter and topic names and
// descriptions. An empty query returns three empty lists. typ, when set,
// restricts items to that type.
func (r *Repository) Search(ctx context.Context, userID, query, typ string) (entities.SearchResults, error) {
	results := entities.EmptySearchResults()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return results, nil
	}

	var itemType entities.ItemType
	if typ != "" {
		var ok bool
		if itemType, ok = entities.ParseItemType(typ); !ok {
			return results, apperr.Validation("unknown item type %q", typ)
		}
	}

	pattern := "%" + escapeLike(query) + "%"
	db := r.db.WithContext(ctx)

	matchingProps := db.Session(&gorm.Session{NewDB: true}).
		Model(&entities.Property{}).
		Select("item_id").
		Where(`LOWER(properties."key") LIKE ? ESCAPE '\' OR LOWER(properties.value) LIKE ? ESCAPE '\'`, pattern, pattern)

	itemQuery := db.
		Scopes(ownership.Items(userID)).
		Where(`(LOWER(items.name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(items.scientific_name, '')) LIKE ? ESCAPE '\' OR LOWER(items.description) LIKE ? ESCAPE '\' OR items.id IN (?))`,
			pattern, pattern, pattern, matchingProps)
	if itemType != "" {
		itemQuery = itemQuery.Where("items.type = ?", string(itemType))
	}
	err := itemQuery.
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Flashcard").
		Preload("Topic").
		Preload("Topic.Chapter").
		Order("items.name ASC").
		Limit(entities.SearchItemLimit).
		Find(&results.Items).Error
	if err != nil {
		return results, fmt.Errorf("failed to search items: %w", err)
	}
	for i := range results.Items {
		results.Items[i].Hydrate()
	}

	err = db.
		Scopes(ownership.Chapters(userID)).
		Where(`(LOWER(chapters.name) LIKE ? ESCAPE '\' OR LOWER(chapters.description) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("sort_order ASC").
		Limit(entities.SearchChapterLimit).
		Find(&results.Chapters).Error
	if err != nil {
		return results, fmt.Errorf("failed to search chapters: %w", err)
	}

	err = db.
		Scopes(ownership.Topics(userID)).
		Where(`(LOWER(topics.name) LIKE ? ESCAPE '\' OR LOWER(topics.description) LIKE ? ESCAPE '\')`, pattern, pattern).
		Preload("Chapter").
		Order("sort_order ASC").
		Limit(entities.SearchTopicLimit).
		Find(&results.Topics).Error
	if err != nil {
		return results, fmt.Errorf("failed to search topics: %w", err)
	}

	if results.Items == nil {
		results.Items = []entities.Item{}
	}
	if results.Chapters == nil {
		results.Chapters = []entities.Chapter{}
	}
	if results.Topics == nil {
		results.Topics = []entities.Topic{}
	}
	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
