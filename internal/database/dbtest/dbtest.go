// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/pharmastudy/internal/database"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Open returns a migrated database in the test's temp dir. It is closed
// when the test finishes.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{Name: email, Email: email}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateChapter(t *testing.T, db *gorm.DB, userID, name string, order int) *entities.Chapter {
	t.Helper()
	chapter := &entities.Chapter{UserID: userID, Name: name, Order: order}
	require.NoError(t, db.Create(chapter).Error)
	return chapter
}

func CreateTopic(t *testing.T, db *gorm.DB, chapterID, name string, order int) *entities.Topic {
	t.Helper()
	topic := &entities.Topic{ChapterID: chapterID, Name: name, Order: order}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

func CreateItem(t *testing.T, db *gorm.DB, topicID, name string, typ entities.ItemType, props ...entities.PropertyInput) *entities.Item {
	t.Helper()
	item := &entities.Item{TopicID: topicID, Name: name, Type: typ}
	require.NoError(t, db.Create(item).Error)
	if len(props) > 0 {
		built := entities.BuildProperties(item.ID, props)
		require.NoError(t, db.Create(&built).Error)
		item.Properties = built
	}
	return item
}

func CreateFlashcard(t *testing.T, db *gorm.DB, itemID, front, back string) *entities.Flashcard {
	t.Helper()
	card := &entities.Flashcard{ItemID: itemID, Front: front, Back: back}
	require.NoError(t, db.Create(card).Error)
	return card
}
