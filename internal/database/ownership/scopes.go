// Package ownership provides gorm scopes that restrict queries to records
// reachable from a user's chapters.
package ownership

import (
	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

func fresh(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true})
}

// ChapterIDs selects the ids of the user's chapters.
func ChapterIDs(db *gorm.DB, userID string) *gorm.DB {
	return fresh(db).Model(&entities.Chapter{}).Select("id").Where("user_id = ?", userID)
}

// TopicIDs selects the ids of topics under the user's chapters.
func TopicIDs(db *gorm.DB, userID string) *gorm.DB {
	return fresh(db).Model(&entities.Topic{}).Select("id").Where("chapter_id IN (?)", ChapterIDs(db, userID))
}

// ItemIDs selects the ids of items under the user's topics.
func ItemIDs(db *gorm.DB, userID string) *gorm.DB {
	return fresh(db).Model(&entities.Item{}).Select("id").Where("topic_id IN (?)", TopicIDs(db, userID))
}

func Chapters(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("chapters.user_id = ?", userID)
	}
}

func Topics(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("topics.chapter_id IN (?)", ChapterIDs(db, userID))
	}
}

func Items(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("items.topic_id IN (?)", TopicIDs(db, userID))
	}
}

func Flashcards(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("flashcards.item_id IN (?)", ItemIDs(db, userID))
	}
}
