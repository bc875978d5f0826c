package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/media"
)

type TopicsController struct {
	store   TopicStore
	remover media.Remover
}

func NewTopicsController(store TopicStore, remover media.Remover) *TopicsController {
	return &TopicsController{store: store, remover: remover}
}

// CreateTopic appends a topic to a chapter the caller owns.
// POST /topics/:chapterId
func (tc *TopicsController) CreateTopic(c *gin.Context) {
	chapterID, ok := parseIDParam(c, "chapterId")
	if !ok {
		return
	}

	var req entities.NewTopic
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "create topic")
		return
	}

	topic, err := tc.store.CreateTopic(c.Request.Context(), GetUserID(c), chapterID, req)
	if err != nil {
		respondError(c, err, "create topic")
		return
	}
	respondCreated(c, topic)
}

// UpdateTopic applies a partial update.
// PUT /topics/:id
func (tc *TopicsController) UpdateTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch entities.TopicPatch
	if !bindJSON(c, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(c, err, "update topic")
		return
	}

	topic, err := tc.store.UpdateTopic(c.Request.Context(), GetUserID(c), id, patch)
	if err != nil {
		respondError(c, err, "update topic")
		return
	}
	c.JSON(http.StatusOK, topic)
}

// DeleteTopic removes a topic and its items.
// DELETE /topics/:id
func (tc *TopicsController) DeleteTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	images, err := tc.store.DeleteTopic(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondError(c, err, "delete topic")
		return
	}
	removeImages(c, tc.remover, images...)
	respondDeleted(c, "Topic")
}
