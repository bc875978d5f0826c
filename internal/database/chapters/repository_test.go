package chapters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/dbtest"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	db := dbtest.Open(t)
	return NewRepository(db), db
}

func TestRepository_CreateChapter_AssignsNextOrderPerUser(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")

	first, err := repo.CreateChapter(ctx, alice.ID, entities.NewChapter{Name: "Pharmacokinetics"})
	require.NoError(t, err)
	second, err := repo.CreateChapter(ctx, alice.ID, entities.NewChapter{Name: "Pharmacodynamics"})
	require.NoError(t, err)
	other, err := repo.CreateChapter(ctx, bob.ID, entities.NewChapter{Name: "Toxicology"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, 1, other.Order)
	assert.NotNil(t, first.Topics)
	assert.Empty(t, first.Topics)
}

func TestRepository_CreateChapter_OrderAfterGap(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "gap@example.com")
	dbtest.CreateChapter(t, db, user.ID, "Old", 7)

	chapter, err := repo.CreateChapter(ctx, user.ID, entities.NewChapter{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, 8, chapter.Order)
}

func TestRepository_ListChapters_NestedAndScoped(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")

	second := dbtest.CreateChapter(t, db, alice.ID, "Second", 2)
	first := dbtest.CreateChapter(t, db, alice.ID, "First", 1)
	dbtest.CreateChapter(t, db, bob.ID, "Bob's", 1)

	topic := dbtest.CreateTopic(t, db, first.ID, "Absorption", 1)
	item := dbtest.CreateItem(t, db, topic.ID, "Aspirin", entities.ItemTypeMedication,
		entities.PropertyInput{Key: "Molecular Formula", Value: "C9H8O4"},
		entities.PropertyInput{Key: "CID", Value: "2244"},
	)
	dbtest.CreateFlashcard(t, db, item.ID, "What is aspirin?", "An NSAID")

	chapters, err := repo.ListChapters(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, first.ID, chapters[0].ID)
	assert.Equal(t, second.ID, chapters[1].ID)

	require.Len(t, chapters[0].Topics, 1)
	require.Len(t, chapters[0].Topics[0].Items, 1)
	got := chapters[0].Topics[0].Items[0]
	assert.Equal(t, first.ID, got.ChapterID)
	require.Len(t, got.Properties, 2)
	assert.Equal(t, "Molecular Formula", got.Properties[0].Key)
	require.NotNil(t, got.Flashcard)
	assert.Equal(t, "An NSAID", got.Flashcard.Back)
	assert.NotNil(t, chapters[1].Topics)
}

func TestRepository_UpdateChapter(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")
	chapter := dbtest.CreateChapter(t, db, alice.ID, "Intro", 1)

	name := "Introduction to Pharmacology"
	color := "#3b82f6"
	order := 5
	updated, err := repo.UpdateChapter(ctx, alice.ID, chapter.ID, entities.ChapterPatch{Name: &name, Color: &color, Order: &order})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 5, updated.Order)
	require.NotNil(t, updated.Color)
	assert.Equal(t, color, *updated.Color)

	_, err = repo.UpdateChapter(ctx, bob.ID, chapter.ID, entities.ChapterPatch{Name: &name})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "Chapter not found", err.Error())
}

func TestRepository_UpdateChapter_ClearsColor(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	chapter := dbtest.CreateChapter(t, db, alice.ID, "Intro", 1)

	color := "#3b82f6"
	_, err := repo.UpdateChapter(ctx, alice.ID, chapter.ID, entities.ChapterPatch{Color: &color})
	require.NoError(t, err)

	cleared := ""
	updated, err := repo.UpdateChapter(ctx, alice.ID, chapter.ID, entities.ChapterPatch{Color: &cleared})
	require.NoError(t, err)
	assert.Nil(t, updated.Color)
}

func TestRepository_DeleteChapter_Cascades(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")

	chapter := dbtest.CreateChapter(t, db, alice.ID, "Intro", 1)
	topic := dbtest.CreateTopic(t, db, chapter.ID, "Routes", 1)
	item := dbtest.CreateItem(t, db, topic.ID, "Morphine", entities.ItemTypeMedication, entities.PropertyInput{Key: "CID", Value: "5288826"})
	url := "/media/morphine.png"
	require.NoError(t, db.Model(item).Update("image_url", url).Error)
	dbtest.CreateFlashcard(t, db, item.ID, "Q", "A")

	_, err := repo.DeleteChapter(ctx, bob.ID, chapter.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	images, err := repo.DeleteChapter(ctx, alice.ID, chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{url}, images)

	for _, model := range []any{&entities.Chapter{}, &entities.Topic{}, &entities.Item{}, &entities.Property{}, &entities.Flashcard{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T should be empty", model)
	}

	_, err = repo.DeleteChapter(ctx, alice.ID, chapter.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
