// Package cascade deletes a record together with everything below it.
// Children are removed explicitly so the behaviour does not depend on
// foreign key enforcement in the driver. All functions expect to run
// inside a transaction.
package cascade

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

// DeleteItems removes items with their properties and flashcards and
// returns the image URLs they referenced.
func DeleteItems(tx *gorm.DB, itemIDs []string) ([]string, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	var images []string
	if err := tx.Model(&entities.Item{}).
		Where("id IN ? AND image_url IS NOT NULL AND image_url <> ''", itemIDs).
		Pluck("image_url", &images).Error; err != nil {
		return nil, fmt.Errorf("failed to collect item images: %w", err)
	}

	if err := tx.Where("item_id IN ?", itemIDs).Delete(&entities.Flashcard{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete flashcards: %w", err)
	}
	if err := tx.Where("item_id IN ?", itemIDs).Delete(&entities.Property{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete properties: %w", err)
	}
	if err := tx.Where("id IN ?", itemIDs).Delete(&entities.Item{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete items: %w", err)
	}
	return images, nil
}

// DeleteTopics removes topics and all of their items.
func DeleteTopics(tx *gorm.DB, topicIDs []string) ([]string, error) {
	if len(topicIDs) == 0 {
		return nil, nil
	}

	var itemIDs []string
	if err := tx.Model(&entities.Item{}).Where("topic_id IN ?", topicIDs).Pluck("id", &itemIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to collect items: %w", err)
	}
	images, err := DeleteItems(tx, itemIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", topicIDs).Delete(&entities.Topic{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete topics: %w", err)
	}
	return images, nil
}

// DeleteChapter removes a chapter and its whole subtree.
func DeleteChapter(tx *gorm.DB, chapterID string) ([]string, error) {
	var topicIDs []string
	if err := tx.Model(&entities.Topic{}).Where("chapter_id = ?", chapterID).Pluck("id", &topicIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to collect topics: %w", err)
	}
	images, err := DeleteTopics(tx, topicIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("id = ?", chapterID).Delete(&entities.Chapter{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete chapter: %w", err)
	}
	return images, nil
}
