package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

type FlashcardsController struct {
	store FlashcardStore
}

func NewFlashcardsController(store FlashcardStore) *FlashcardsController {
	return &FlashcardsController{store: store}
}

// ListFlashcards returns the caller's cards with their item, its
// properties, topic and chapter.
// GET /flashcards
func (fc *FlashcardsController) ListFlashcards(c *gin.Context) {
	cards, err := fc.store.ListFlashcards(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondError(c, err, "list flashcards")
		return
	}
	c.JSON(http.StatusOK, cards)
}

// POST /flashcards
func (fc *FlashcardsController) CreateFlashcard(c *gin.Context) {
	var req entities.NewFlashcard
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "create flashcard")
		return
	}

	card, err := fc.store.CreateFlashcard(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		respondError(c, err, "create flashcard")
		return
	}
	respondCreated(c, card)
}

// UpdateFlashcard edits the sides or the mastered flag.
// PUT /flashcards/:id
func (fc *FlashcardsController) UpdateFlashcard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch entities.FlashcardPatch
	if !bindJSON(c, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(c, err, "update flashcard")
		return
	}

	card, err := fc.store.UpdateFlashcard(c.Request.Context(), GetUserID(c), id, patch)
	if err != nil {
		respondError(c, err, "update flashcard")
		return
	}
	c.JSON(http.StatusOK, card)
}

// DELETE /flashcards/:id
func (fc *FlashcardsController) DeleteFlashcard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.store.DeleteFlashcard(c.Request.Context(), GetUserID(c), id); err != nil {
		respondError(c, err, "delete flashcard")
		return
	}
	respondDeleted(c, "Flashcard")
}
