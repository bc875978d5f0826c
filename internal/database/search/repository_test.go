package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/dbtest"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

func TestRepository_Search(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := dbtest.CreateUser(t, db, "owner@example.com")
	other := dbtest.CreateUser(t, db, "other@example.com")
	chapter := dbtest.CreateChapter(t, db, owner.ID, "Pharmacokinetics", 1)
	topic := dbtest.CreateTopic(t, db, chapter.ID, "Drug Absorption", 1)
	dbtest.CreateItem(t, db, topic.ID, "Aspirin", entities.ItemTypeMedication, entities.PropertyInput{Key: "Molecular Formula", Value: "C9H8O4"})
	dbtest.CreateItem(t, db, topic.ID, "CYP3A4", entities.ItemTypeEnzyme, entities.PropertyInput{Key: "Substrate", Value: "Midazolam"})

	foreignChapter := dbtest.CreateChapter(t, db, other.ID, "Aspirin notes", 1)
	foreignTopic := dbtest.CreateTopic(t, db, foreignChapter.ID, "Aspirin", 1)
	dbtest.CreateItem(t, db, foreignTopic.ID, "Aspirin", entities.ItemTypeMedication)

	t.Run("empty query", func(t *testing.T) {
		res, err := repo.Search(ctx, owner.ID, "   ", "")
		require.NoError(t, err)
		assert.Equal(t, entities.EmptySearchResults(), res)
	})

	t.Run("matches item name case-insensitively and stays scoped", func(t *testing.T) {
		res, err := repo.Search(ctx, owner.ID, "ASPIRIN", "")
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Aspirin", res.Items[0].Name)
		assert.Equal(t, chapter.ID, res.Items[0].ChapterID)
		require.NotNil(t, res.Items[0].Topic)
		require.NotNil(t, res.Items[0].Topic.Chapter)
		assert.Empty(t, res.Chapters)
		assert.Empty(t, res.Topics)
	})

	t.Run("matches property values", func(t *testing.T) {
		res, err := repo.Search(ctx, owner.ID, "midazolam", "")
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "CYP3A4", res.Items[0].Name)
	})

	t.Run("matches chapters and topics", func(t *testing.T) {
		res, err := repo.Search(ctx, owner.ID, "absorp", "")
		require.NoError(t, err)
		require.Len(t, res.Topics, 1)
		assert.Equal(t, "Drug Absorption", res.Topics[0].Name)
		require.NotNil(t, res.Topics[0].Chapter)

		res, err = repo.Search(ctx, owner.ID, "kinetics", "")
		require.NoError(t, err)
		require.Len(t, res.Chapters, 1)
	})

	t.Run("type filter", func(t *testing.T) {
		res, err := repo.Search(ctx, owner.ID, "c", "ENZYME")
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, entities.ItemTypeEnzyme, res.Items[0].Type)

		_, err = repo.Search(ctx, owner.ID, "c", "protein")
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		res, err := repo.Search(ctx, owner.ID, "%", "")
		require.NoError(t, err)
		assert.Empty(t, res.Items)
	})
}

func TestRepository_Search_Caps(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	owner := dbtest.CreateUser(t, db, "owner@example.com")

	for i := 0; i < entities.SearchChapterLimit+2; i++ {
		chapter := dbtest.CreateChapter(t, db, owner.ID, fmt.Sprintf("Chapter %02d", i), i+1)
		topic := dbtest.CreateTopic(t, db, chapter.ID, fmt.Sprintf("Topic %02d", i), 1)
		for j := 0; j < 5; j++ {
			dbtest.CreateItem(t, db, topic.ID, fmt.Sprintf("Item %02d-%d", i, j), entities.ItemTypeMolecule)
		}
	}

	res, err := repo.Search(context.Background(), owner.ID, "0", "")
	require.NoError(t, err)
	assert.Len(t, res.Items, entities.SearchItemLimit)
	assert.Len(t, res.Chapters, entities.SearchChapterLimit)
	assert.Len(t, res.Topics, entities.SearchTopicLimit)
}
