package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := fmt.Errorf("delete topic: %w", NotFound("Topic"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Topic not found", Message(err, "x"))
	assert.Equal(t, http.StatusNotFound, Status(err))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("name is required"), http.StatusBadRequest},
		{Unauthorized("authentication required"), http.StatusUnauthorized},
		{Conflict("already exists"), http.StatusConflict},
		{New(ErrRateLimited, "slow down"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(http.StatusNotFound, "Item not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Item not found", err.Error())

	assert.Nil(t, FromStatus(http.StatusBadGateway, "upstream"))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("db locked"), "internal server error"))
}
