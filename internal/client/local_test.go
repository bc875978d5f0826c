package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/localstore"
	"github.com/mrlokans/pharmastudy/internal/media"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) localstore.Store {
	t.Helper()
	store, err := localstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestLocal(t *testing.T, store localstore.Store) *Local {
	t.Helper()
	l := NewLocal(store)
	l.bcryptCost = bcrypt.MinCost
	l.now = func() time.Time { return fixedNow }
	return l
}

func signedInLocal(t *testing.T) *Local {
	t.Helper()
	l := newTestLocal(t, newTestStore(t))
	_, err := l.Register(context.Background(), "Student", "student@example.com", "password123")
	require.NoError(t, err)
	return l
}

func strPtr(s string) *string { return &s }

func TestLocal_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	l := newTestLocal(t, store)

	result, err := l.Register(ctx, "Student", "Student@Example.com", "password123")
	require.NoError(t, err)
	assert.True(t, entities.IsLocalID(result.User.ID))
	assert.Equal(t, "local-token-"+result.User.ID, result.Token)
	assert.Equal(t, "student@example.com", result.User.Email)

	me, err := l.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, me.ID)

	raw, err := store.Get(ctx, localstore.KeyUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password123")

	_, err = l.Register(ctx, "Again", "STUDENT@example.com", "password123")
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = l.Register(ctx, "", "x@example.com", "password123")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	require.NoError(t, l.Logout(ctx))
	_, err = l.Me(ctx)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	_, err = l.Login(ctx, "student@example.com", "wrong-password")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = l.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	again, err := l.Login(ctx, "student@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, result.Token, again.Token)
}

func TestLocal_RequiresSignIn(t *testing.T) {
	l := newTestLocal(t, newTestStore(t))

	_, err := l.ListChapters(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestLocal_ChaptersAreOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	l := signedInLocal(t)

	first, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacokinetics", Color: strPtr("ABC")})
	require.NoError(t, err)
	second, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacodynamics"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, "#aabbcc", *first.Color)
	assert.Equal(t, []entities.Topic{}, first.Topics)

	_, err = l.CreateChapter(ctx, entities.NewChapter{Name: "  "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// Move the first chapter behind the second.
	order := 3
	_, err = l.UpdateChapter(ctx, first.ID, entities.ChapterPatch{Order: &order})
	require.NoError(t, err)

	chapters, err := l.ListChapters(ctx)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, "Pharmacodynamics", chapters[0].Name)
	assert.Equal(t, "Pharmacokinetics", chapters[1].Name)

	// A second account sees none of it.
	_, err = l.Register(ctx, "Other", "other@example.com", "password123")
	require.NoError(t, err)

	chapters, err = l.ListChapters(ctx)
	require.NoError(t, err)
	assert.Empty(t, chapters)

	_, err = l.UpdateChapter(ctx, first.ID, entities.ChapterPatch{Name: strPtr("Stolen")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.True(t, errors.Is(l.DeleteChapter(ctx, first.ID), apperr.ErrNotFound))

	own, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Toxicology"})
	require.NoError(t, err)
	assert.Equal(t, 1, own.Order)
}

func TestLocal_TopicsAndItems(t *testing.T) {
	ctx := context.Background()
	l := signedInLocal(t)

	chapter, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacokinetics"})
	require.NoError(t, err)

	_, err = l.CreateTopic(ctx, "local-chapter-missing", entities.NewTopic{Name: "Absorption"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	absorption, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Absorption"})
	require.NoError(t, err)
	metabolism, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Metabolism"})
	require.NoError(t, err)
	assert.Equal(t, 1, absorption.Order)
	assert.Equal(t, 2, metabolism.Order)

	item, err := l.CreateItem(ctx, metabolism.ID, entities.NewItem{
		Name: "CYP3A4",
		Type: "Enzyme",
		Properties: []entities.PropertyInput{
			{Key: "Family", Value: "Cytochrome P450"},
			{Key: "Location", Value: "Liver"},
		},
		FlashcardFront: "Most abundant hepatic CYP?",
		FlashcardBack:  "CYP3A4",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.ItemTypeEnzyme, item.Type)
	assert.Equal(t, chapter.ID, item.ChapterID)
	require.Len(t, item.Properties, 2)
	assert.Equal(t, "Family", item.Properties[0].Key)
	assert.Equal(t, "Location", item.Properties[1].Key)
	require.NotNil(t, item.Flashcard)
	assert.Equal(t, "CYP3A4", item.Flashcard.Back)

	_, err = l.CreateItem(ctx, metabolism.ID, entities.NewItem{Name: "Thing", Type: "protein"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// No property list keeps the stored one.
	updated, err := l.UpdateItem(ctx, item.ID, entities.ItemPatch{Description: strPtr("Oxidizes most drugs")})
	require.NoError(t, err)
	assert.Len(t, updated.Properties, 2)
	assert.Equal(t, "Oxidizes most drugs", updated.Description)

	// An empty list clears it.
	updated, err = l.UpdateItem(ctx, item.ID, entities.ItemPatch{Properties: &[]entities.PropertyInput{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Properties)

	chapters, err := l.ListChapters(ctx)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	require.Len(t, chapters[0].Topics, 2)
	stored := chapters[0].Topics[1].Items[0]
	if diff := cmp.Diff(*updated, stored); diff != "" {
		t.Errorf("stored item differs from returned item (-returned +stored):\n%s", diff)
	}

	require.NoError(t, l.DeleteItem(ctx, item.ID))
	assert.True(t, errors.Is(l.DeleteItem(ctx, item.ID), apperr.ErrNotFound))

	cards, err := l.ListFlashcards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestLocal_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	l := signedInLocal(t)

	chapter, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacodynamics"})
	require.NoError(t, err)
	keep, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Receptor Theory"})
	require.NoError(t, err)
	drop, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Signal Transduction"})
	require.NoError(t, err)

	for _, topicID := range []string{keep.ID, drop.ID} {
		_, err := l.CreateItem(ctx, topicID, entities.NewItem{
			Name: "Agonist " + topicID, Type: entities.ItemTypeMolecule,
			FlashcardFront: "front", FlashcardBack: "back",
		})
		require.NoError(t, err)
	}

	require.NoError(t, l.DeleteTopic(ctx, drop.ID))
	cards, err := l.ListFlashcards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	require.NoError(t, l.DeleteChapter(ctx, chapter.ID))
	cards, err = l.ListFlashcards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)

	chapters, err := l.ListChapters(ctx)
	require.NoError(t, err)
	assert.Empty(t, chapters)
}

func TestLocal_Flashcards(t *testing.T) {
	ctx := context.Background()
	l := signedInLocal(t)

	chapter, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacokinetics"})
	require.NoError(t, err)
	topic, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Absorption"})
	require.NoError(t, err)
	item, err := l.CreateItem(ctx, topic.ID, entities.NewItem{Name: "Lidocaine", Type: entities.ItemTypeMedication})
	require.NoError(t, err)
	assert.Nil(t, item.Flashcard)

	_, err = l.CreateFlashcard(ctx, entities.NewFlashcard{ItemID: "local-item-missing", Front: "a", Back: "b"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	card, err := l.CreateFlashcard(ctx, entities.NewFlashcard{ItemID: item.ID, Front: "Class?", Back: "Amide"})
	require.NoError(t, err)

	_, err = l.CreateFlashcard(ctx, entities.NewFlashcard{ItemID: item.ID, Front: "Again?", Back: "No"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	mastered := true
	updated, err := l.UpdateFlashcard(ctx, card.ID, entities.FlashcardPatch{Mastered: &mastered})
	require.NoError(t, err)
	assert.True(t, updated.Mastered)
	require.NotNil(t, updated.LastReviewed)
	assert.True(t, updated.LastReviewed.Equal(fixedNow))

	cards, err := l.ListFlashcards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.NotNil(t, cards[0].Item)
	assert.Equal(t, "Lidocaine", cards[0].Item.Name)
	require.NotNil(t, cards[0].Item.Topic)
	require.NotNil(t, cards[0].Item.Topic.Chapter)
	assert.Equal(t, "Pharmacokinetics", cards[0].Item.Topic.Chapter.Name)

	require.NoError(t, l.DeleteFlashcard(ctx, card.ID))
	assert.True(t, errors.Is(l.DeleteFlashcard(ctx, card.ID), apperr.ErrNotFound))
}

func TestLocal_Search(t *testing.T) {
	ctx := context.Background()
	l := signedInLocal(t)

	empty, err := l.Search(ctx, "  ", "")
	require.NoError(t, err)
	assert.Equal(t, entities.EmptySearchResults(), empty)

	chapter, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacokinetics", Description: "What the body does to a drug"})
	require.NoError(t, err)
	topic, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Metabolism"})
	require.NoError(t, err)
	_, err = l.CreateItem(ctx, topic.ID, entities.NewItem{
		Name: "CYP2D6", Type: entities.ItemTypeEnzyme,
		Properties: []entities.PropertyInput{{Key: "Substrate", Value: "Codeine"}},
	})
	require.NoError(t, err)
	_, err = l.CreateItem(ctx, topic.ID, entities.NewItem{Name: "Codeine", Type: entities.ItemTypeMedication})
	require.NoError(t, err)

	results, err := l.Search(ctx, "CODEINE", "")
	require.NoError(t, err)
	require.Len(t, results.Items, 2)
	assert.Equal(t, "CYP2D6", results.Items[0].Name)
	assert.Equal(t, "Codeine", results.Items[1].Name)
	require.NotNil(t, results.Items[0].Topic)
	assert.Equal(t, "Metabolism", results.Items[0].Topic.Name)

	results, err = l.Search(ctx, "codeine", "medication")
	require.NoError(t, err)
	require.Len(t, results.Items, 1)
	assert.Equal(t, "Codeine", results.Items[0].Name)

	results, err = l.Search(ctx, "body", "")
	require.NoError(t, err)
	assert.Len(t, results.Chapters, 1)
	assert.Empty(t, results.Items)

	_, err = l.Search(ctx, "codeine", "protein")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	for i := range 12 {
		_, err := l.CreateChapter(ctx, entities.NewChapter{Name: fmt.Sprintf("Review %d", i)})
		require.NoError(t, err)
	}
	results, err = l.Search(ctx, "review", "")
	require.NoError(t, err)
	assert.Len(t, results.Chapters, entities.SearchChapterLimit)
}

func TestLocal_UploadImage(t *testing.T) {
	l := newTestLocal(t, newTestStore(t))

	result, err := l.UploadImage(context.Background(), "structure.png", pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ImageURL, "data:image/png;base64,"))
	assert.True(t, entities.IsLocalID(result.PublicID))

	_, err = l.UploadImage(context.Background(), "notes.pdf", pngHeader)
	assert.ErrorIs(t, err, media.ErrFileType)
}

func TestLocal_CorruptDataReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	l := newTestLocal(t, store)
	_, err := l.Register(ctx, "Student", "student@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, localstore.KeyChapters, []byte("{broken")))

	chapters, err := l.ListChapters(ctx)
	require.NoError(t, err)
	assert.Empty(t, chapters)

	created, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Fresh start"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Order)
}

func TestLocal_Accounts(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t, newTestStore(t))

	first, err := l.Register(ctx, "First", "first@example.com", "password123")
	require.NoError(t, err)
	_, err = l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacokinetics"})
	require.NoError(t, err)
	second, err := l.Register(ctx, "Second", "second@example.com", "password123")
	require.NoError(t, err)

	accounts, err := l.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "first@example.com", accounts[0].Email)

	// Removing someone else keeps the current session.
	require.NoError(t, l.DeleteAccount(ctx, first.User.ID))
	me, err := l.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, me.ID)

	// Their chapters remain pushable.
	pending, err := l.PendingChapters(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.User.ID, pending[0].UserID)

	require.NoError(t, l.DeleteAccount(ctx, second.User.ID))
	_, err = l.Me(ctx)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	err = l.DeleteAccount(ctx, second.User.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLocal_Reset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	l := newTestLocal(t, store)

	_, err := l.Register(ctx, "Student", "student@example.com", "password123")
	require.NoError(t, err)
	chapter, err := l.CreateChapter(ctx, entities.NewChapter{Name: "Pharmacokinetics"})
	require.NoError(t, err)
	topic, err := l.CreateTopic(ctx, chapter.ID, entities.NewTopic{Name: "Absorption"})
	require.NoError(t, err)
	_, err = l.CreateItem(ctx, topic.ID, entities.NewItem{Name: "Lidocaine", Type: entities.ItemTypeMedication, FlashcardFront: "Class?", FlashcardBack: "Amide"})
	require.NoError(t, err)

	require.NoError(t, l.Reset(ctx))

	for _, key := range localstore.AllKeys {
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, localstore.ErrNotFound, key)
	}
	n, err := l.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
