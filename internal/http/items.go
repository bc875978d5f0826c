package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/media"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

type ItemsController struct {
	store    ItemStore
	uploader ImageUploader
	remover  media.Remover
}

func NewItemsController(store ItemStore, uploader ImageUploader, remover media.Remover) *ItemsController {
	return &ItemsController{store: store, uploader: uploader, remover: remover}
}

// CreateItem adds an item with its properties and, when both sides are
// given, a flashcard.
// POST /items/:topicId
func (ic *ItemsController) CreateItem(c *gin.Context) {
	topicID, ok := parseIDParam(c, "topicId")
	if !ok {
		return
	}

	var req entities.NewItem
	if !bindJSON(c, &req) {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		respondError(c, err, "create item")
		return
	}

	item, err := ic.store.CreateItem(c.Request.Context(), GetUserID(c), topicID, req)
	if err != nil {
		respondError(c, err, "create item")
		return
	}
	respondCreated(c, item)
}

// UpdateItem applies a partial update. A properties list replaces the
// stored one.
// PUT /items/:id
func (ic *ItemsController) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch entities.ItemPatch
	if !bindJSON(c, &patch) {
		return
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		respondError(c, err, "update item")
		return
	}

	item, err := ic.store.UpdateItem(c.Request.Context(), GetUserID(c), id, patch)
	if err != nil {
		respondError(c, err, "update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item and then its image. Image removal failures
// do not fail the request.
// DELETE /items/:id
func (ic *ItemsController) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := ic.store.DeleteItem(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondError(c, err, "delete item")
		return
	}
	if item.ImageURL != nil {
		removeImages(c, ic.remover, *item.ImageURL)
	}
	respondDeleted(c, "Item")
}

// UploadImage stores the multipart "image" field.
// POST /items/upload
func (ic *ItemsController) UploadImage(c *gin.Context) {
	if ic.uploader == nil {
		respondError(c, errors.New("image uploads are not configured"), "upload image")
		return
	}

	limit := ic.uploader.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperr.Validation("Image exceeds the %d MB limit", limit>>20), "upload image")
			return
		}
		respondError(c, media.ErrNoFile, "upload image")
		return
	}
	defer file.Close()

	if header.Size > limit {
		respondError(c, apperr.Validation("Image exceeds the %d MB limit", limit>>20), "upload image")
		return
	}

	result, err := ic.uploader.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err, "upload image")
		return
	}
	c.JSON(http.StatusOK, result)
}
