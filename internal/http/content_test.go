package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

func TestChapters_CRUD(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	first := s.createChapter(t, alice, "Introduction to Pharmacology")
	second := s.createChapter(t, alice, "Pharmacokinetics")
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Empty(t, second.Topics)

	// Bob's numbering is independent of Alice's.
	bobs := s.createChapter(t, bob, "Toxicology")
	assert.Equal(t, 1, bobs.Order)

	t.Run("list is scoped and ordered", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/chapters", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[[]entities.Chapter](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("validation", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/chapters", alice, gin.H{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/chapters", alice, gin.H{"name": "Colored", "color": "blue"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/chapters/"+first.ID, alice, gin.H{"color": "#3B82F6", "order": 7})
		require.Equal(t, http.StatusOK, w.Code)

		updated := decode[entities.Chapter](t, w)
		assert.Equal(t, "Introduction to Pharmacology", updated.Name)
		assert.Equal(t, 7, updated.Order)
		require.NotNil(t, updated.Color)
		assert.Equal(t, "#3b82f6", *updated.Color)
	})

	t.Run("foreign chapters are not found", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/chapters/"+first.ID, bob, gin.H{"name": "Mine now"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Chapter not found"}`, w.Body.String())

		w = s.do(t, http.MethodDelete, "/chapters/"+first.ID, bob, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("served under /api too", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/chapters", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]entities.Chapter](t, w), 1)
	})
}

func TestChapters_DeleteCascadesAndRemovesImages(t *testing.T) {
	s := setupServer(t)
	token := s.register(t, "alice@example.com")

	chapter := s.createChapter(t, token, "Pharmacodynamics")
	topic := s.createTopic(t, token, chapter.ID, "Receptor Theory")
	s.createItem(t, token, topic.ID, gin.H{"name": "Adrenaline", "type": "medication", "imageUrl": "/media/pharmastudy/items/adrenaline.png"})
	s.createItem(t, token, topic.ID, gin.H{"name": "Acetylcholine", "type": "molecule"})

	w := s.do(t, http.MethodDelete, "/chapters/"+chapter.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Chapter deleted successfully"}`, w.Body.String())
	assert.Equal(t, []string{"/media/pharmastudy/items/adrenaline.png"}, s.remover.removed())

	w = s.do(t, http.MethodGet, "/chapters", token, nil)
	assert.Empty(t, decode[[]entities.Chapter](t, w))

	w = s.do(t, http.MethodDelete, "/chapters/"+chapter.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTopics(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	chapter := s.createChapter(t, alice, "Pharmacokinetics")
	absorption := s.createTopic(t, alice, chapter.ID, "Drug Absorption")
	distribution := s.createTopic(t, alice, chapter.ID, "Distribution")
	assert.Equal(t, 1, absorption.Order)
	assert.Equal(t, 2, distribution.Order)
	assert.Equal(t, chapter.ID, absorption.ChapterID)
	assert.NotNil(t, absorption.Items)

	w := s.do(t, http.MethodPost, "/topics/"+chapter.ID, bob, gin.H{"name": "Sneaky"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Chapter not found"}`, w.Body.String())

	w = s.do(t, http.MethodPut, "/topics/"+distribution.ID, alice, gin.H{"description": "Volume of distribution"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Volume of distribution", decode[entities.Topic](t, w).Description)

	w = s.do(t, http.MethodDelete, "/topics/"+absorption.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/topics/"+absorption.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Topic deleted successfully"}`, w.Body.String())

	// Gaps are kept; the next topic continues after the highest order.
	next := s.createTopic(t, alice, chapter.ID, "Metabolism")
	assert.Equal(t, 3, next.Order)
}

func TestItems(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	chapter := s.createChapter(t, alice, "Pharmacokinetics")
	topic := s.createTopic(t, alice, chapter.ID, "Metabolism")

	item := s.createItem(t, alice, topic.ID, gin.H{
		"name":           "Cytochrome P450 3A4",
		"type":           "Enzyme",
		"description":    "Major hepatic enzyme",
		"properties":     []gin.H{{"key": "Gene", "value": "CYP3A4"}, {"key": "Location", "value": "Liver"}},
		"flashcardFront": "What does CYP3A4 do?",
		"flashcardBack":  "Oxidizes drugs",
		"imageUrl":       "/media/pharmastudy/items/cyp.png",
	})
	assert.Equal(t, entities.ItemTypeEnzyme, item.Type)
	assert.Equal(t, chapter.ID, item.ChapterID)
	require.Len(t, item.Properties, 2)
	assert.Equal(t, "Gene", item.Properties[0].Key)
	require.NotNil(t, item.Flashcard)
	assert.Equal(t, "Oxidizes drugs", item.Flashcard.Back)

	t.Run("invalid type", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/items/"+topic.ID, alice, gin.H{"name": "X", "type": "mineral"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("foreign topic", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/items/"+topic.ID, bob, gin.H{"name": "X", "type": "molecule"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Topic not found"}`, w.Body.String())
	})

	t.Run("update without properties keeps them", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/items/"+item.ID, alice, gin.H{"name": "CYP3A4"})
		require.Equal(t, http.StatusOK, w.Code)
		updated := decode[entities.Item](t, w)
		assert.Equal(t, "CYP3A4", updated.Name)
		assert.Len(t, updated.Properties, 2)
	})

	t.Run("update with properties replaces them", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/items/"+item.ID, alice, gin.H{"properties": []gin.H{{"key": "Substrates", "value": "Midazolam"}}})
		require.Equal(t, http.StatusOK, w.Code)
		updated := decode[entities.Item](t, w)
		require.Len(t, updated.Properties, 1)
		assert.Equal(t, "Substrates", updated.Properties[0].Key)
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/items/"+item.ID, bob, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, http.MethodDelete, "/items/"+item.ID, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Item deleted successfully"}`, w.Body.String())
		assert.Equal(t, []string{"/media/pharmastudy/items/cyp.png"}, s.remover.removed())
	})
}

func TestFlashcards(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	chapter := s.createChapter(t, alice, "Pharmacodynamics")
	topic := s.createTopic(t, alice, chapter.ID, "Receptor Theory")
	item := s.createItem(t, alice, topic.ID, gin.H{"name": "Atropine", "type": "medication"})

	w := s.do(t, http.MethodPost, "/flashcards", bob, gin.H{"itemId": item.ID, "front": "Q", "back": "A"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/flashcards", alice, gin.H{"itemId": item.ID, "front": "Atropine class?", "back": "Muscarinic antagonist"})
	require.Equal(t, http.StatusCreated, w.Code)
	card := decode[entities.Flashcard](t, w)
	assert.False(t, card.Mastered)
	assert.Nil(t, card.LastReviewed)

	w = s.do(t, http.MethodPost, "/flashcards", alice, gin.H{"itemId": item.ID, "front": "Again", "back": "Again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/flashcards/"+card.ID, alice, gin.H{"mastered": true})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[entities.Flashcard](t, w)
	assert.True(t, updated.Mastered)
	assert.NotNil(t, updated.LastReviewed)

	w = s.do(t, http.MethodGet, "/flashcards", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]entities.Flashcard](t, w)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Item)
	assert.Equal(t, "Atropine", list[0].Item.Name)

	w = s.do(t, http.MethodGet, "/flashcards", bob, nil)
	assert.Empty(t, decode[[]entities.Flashcard](t, w))

	w = s.do(t, http.MethodDelete, "/flashcards/"+card.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Flashcard deleted successfully"}`, w.Body.String())
}

func TestSearch(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	chapter := s.createChapter(t, alice, "Pharmacodynamics")
	topic := s.createTopic(t, alice, chapter.ID, "Signal Transduction")
	s.createItem(t, alice, topic.ID, gin.H{"name": "Aspirin", "type": "medication", "properties": []gin.H{{"key": "Molecular Formula", "value": "C9H8O4"}}})
	s.createItem(t, alice, topic.ID, gin.H{"name": "Adenylyl cyclase", "type": "enzyme", "description": "Makes cAMP for signal relay"})

	t.Run("blank query", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/search?q=%20%20", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"chapters":[],"topics":[]}`, w.Body.String())
	})

	t.Run("matches across kinds", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/search?q=SIGNAL", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		results := decode[entities.SearchResults](t, w)
		assert.Len(t, results.Items, 1)
		assert.Len(t, results.Topics, 1)
		assert.Empty(t, results.Chapters)
	})

	t.Run("property values and type filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/search?q=c9h8&type=Medication", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		results := decode[entities.SearchResults](t, w)
		require.Len(t, results.Items, 1)
		assert.Equal(t, "Aspirin", results.Items[0].Name)

		w = s.do(t, http.MethodGet, "/search?q=c9h8&type=enzyme", alice, nil)
		assert.Empty(t, decode[entities.SearchResults](t, w).Items)
	})

	t.Run("invalid type", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/search?q=a&type=mineral", alice, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/search?q=aspirin", bob, nil)
		assert.JSONEq(t, `{"items":[],"chapters":[],"topics":[]}`, w.Body.String())
	})
}

func TestLookupCompounds(t *testing.T) {
	s := setupServer(t)
	token := s.register(t, "alice@example.com")

	w := s.do(t, http.MethodGet, "/lookup/compounds?name=aspirin", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[CompoundResponse](t, w)
	assert.Equal(t, 2244, body.Compound.CID)
	assert.Contains(t, body.Properties, entities.PropertyInput{Key: "Molar Mass", Value: "180.16 g/mol"})

	w = s.do(t, http.MethodGet, "/lookup/compounds?name=unobtainium", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Compound not found"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/lookup/compounds", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
