package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/media"
)

type ChaptersController struct {
	store   ChapterStore
	remover media.Remover
}

func NewChaptersController(store ChapterStore, remover media.Remover) *ChaptersController {
	return &ChaptersController{store: store, remover: remover}
}

// ListChapters returns the caller's chapters with topics, items,
// properties and flashcards, ordered by their order field.
// GET /chapters
func (cc *ChaptersController) ListChapters(c *gin.Context) {
	chapters, err := cc.store.ListChapters(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondError(c, err, "list chapters")
		return
	}
	c.JSON(http.StatusOK, chapters)
}

// CreateChapter appends a chapter after the caller's last one.
// POST /chapters
func (cc *ChaptersController) CreateChapter(c *gin.Context) {
	var req entities.NewChapter
	if !bindJSON(c, &req) {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		respondError(c, err, "create chapter")
		return
	}

	chapter, err := cc.store.CreateChapter(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		respondError(c, err, "create chapter")
		return
	}
	respondCreated(c, chapter)
}

// UpdateChapter applies a partial update.
// PUT /chapters/:id
func (cc *ChaptersController) UpdateChapter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch entities.ChapterPatch
	if !bindJSON(c, &patch) {
		return
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		respondError(c, err, "update chapter")
		return
	}

	chapter, err := cc.store.UpdateChapter(c.Request.Context(), GetUserID(c), id, patch)
	if err != nil {
		respondError(c, err, "update chapter")
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// DeleteChapter removes a chapter with everything under it.
// DELETE /chapters/:id
func (cc *ChaptersController) DeleteChapter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	images, err := cc.store.DeleteChapter(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondError(c, err, "delete chapter")
		return
	}
	removeImages(c, cc.remover, images...)
	respondDeleted(c, "Chapter")
}

// removeImages runs best-effort cleanup that outlives a disconnecting client.
func removeImages(c *gin.Context, remover media.Remover, urls ...string) {
	if remover == nil || len(urls) == 0 {
		return
	}
	remover.RemoveImages(context.WithoutCancel(c.Request.Context()), urls...)
}
