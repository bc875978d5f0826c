package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/database/dbtest"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

func TestRepository_CreateTopic(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")
	chapter := dbtest.CreateChapter(t, db, alice.ID, "Pharmacokinetics", 1)
	other := dbtest.CreateChapter(t, db, alice.ID, "Pharmacodynamics", 2)
	dbtest.CreateTopic(t, db, other.ID, "Receptor Theory", 9)

	first, err := repo.CreateTopic(ctx, alice.ID, chapter.ID, entities.NewTopic{Name: "Absorption"})
	require.NoError(t, err)
	second, err := repo.CreateTopic(ctx, alice.ID, chapter.ID, entities.NewTopic{Name: "Distribution"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, chapter.ID, first.ChapterID)
	assert.NotNil(t, first.Items)

	_, err = repo.CreateTopic(ctx, bob.ID, chapter.ID, entities.NewTopic{Name: "Sneaky"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "Chapter not found", err.Error())
}

func TestRepository_UpdateTopic(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")
	chapter := dbtest.CreateChapter(t, db, alice.ID, "Pharmacokinetics", 1)
	topic := dbtest.CreateTopic(t, db, chapter.ID, "Absorbtion", 1)

	name := "Absorption"
	updated, err := repo.UpdateTopic(ctx, alice.ID, topic.ID, entities.TopicPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 1, updated.Order)

	_, err = repo.UpdateTopic(ctx, bob.ID, topic.ID, entities.TopicPatch{Name: &name})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = repo.UpdateTopic(ctx, bob.ID, topic.ID, entities.TopicPatch{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRepository_DeleteTopic(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice@example.com")
	bob := dbtest.CreateUser(t, db, "bob@example.com")
	chapter := dbtest.CreateChapter(t, db, alice.ID, "Pharmacokinetics", 1)
	topic := dbtest.CreateTopic(t, db, chapter.ID, "Metabolism", 1)
	keep := dbtest.CreateTopic(t, db, chapter.ID, "Excretion", 2)
	dbtest.CreateItem(t, db, topic.ID, "CYP3A4", entities.ItemTypeEnzyme)
	dbtest.CreateItem(t, db, keep.ID, "Probenecid", entities.ItemTypeMedication)

	_, err := repo.DeleteTopic(ctx, bob.ID, topic.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = repo.DeleteTopic(ctx, alice.ID, topic.ID)
	require.NoError(t, err)

	_, err = repo.GetTopic(ctx, alice.ID, topic.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	remaining, err := repo.GetTopic(ctx, alice.ID, keep.ID)
	require.NoError(t, err)
	assert.Len(t, remaining.Items, 1)
	assert.Equal(t, 2, remaining.Order)
}
