package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/pharmastudy/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "3f1c"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, "3f1c", id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Blank(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "  "}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, "", id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "not found", err: apperr.NotFound("Chapter"), status: http.StatusNotFound, body: `{"error":"Chapter not found"}`},
		{name: "validation", err: apperr.Validation("name is required"), status: http.StatusBadRequest, body: `{"error":"name is required"}`},
		{name: "conflict", err: apperr.Conflict("Flashcard already exists for this item"), status: http.StatusConflict, body: `{"error":"Flashcard already exists for this item"}`},
		{name: "wrapped", err: errors.Join(errors.New("ctx"), apperr.NotFound("Item")), status: http.StatusNotFound, body: `{"error":"Item not found"}`},
		{name: "untyped", err: errors.New("disk I/O error"), status: http.StatusInternalServerError, body: `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "test")

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRespondDeleted(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondDeleted(c, "Topic")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Topic deleted successfully"}`, w.Body.String())
}
