package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyUser   = "auth_user"
	ContextKeyToken  = "auth_token"
)

// TokenResolver maps a bearer token to a user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// UserLoader loads the user behind a resolved token.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*entities.User, error)
}

// Middleware authenticates API requests by bearer token.
type Middleware struct {
	tokens TokenResolver
	users  UserLoader
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(tokens TokenResolver, users UserLoader) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handler rejects requests without a valid bearer token with 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c)
			return
		}

		userID, err := m.tokens.Resolve(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := m.users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication required",
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Helper functions to extract auth data from Gin context

// GetUserID returns the authenticated user's ID, or "" outside the middleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetUser returns the authenticated user, or nil.
func GetUser(c *gin.Context) *entities.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		if user, ok := u.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetToken returns the bearer token the request was authenticated with.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}
