package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/auth"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	service Authenticator
	tokens  TokenIssuer
	limiter *auth.RateLimiter
}

func NewAuthController(service Authenticator, tokens TokenIssuer, limiter *auth.RateLimiter) *AuthController {
	return &AuthController{service: service, tokens: tokens, limiter: limiter}
}

// Register creates an account and signs it in.
// POST /auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondBadRequest(c, "All fields are required")
		return
	}

	user, err := ac.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "register")
		return
	}

	token, err := ac.tokens.Issue(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	respondCreated(c, entities.AuthResult{User: *user, Token: token})
}

// Login exchanges credentials for a bearer token.
// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondBadRequest(c, "Email and password are required")
		return
	}

	ip := c.ClientIP()
	if ac.limiter != nil {
		if ok, retryAfter := ac.limiter.Allow(ip, req.Email); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			respondError(c, apperr.New(apperr.ErrRateLimited, "Too many login attempts. Please try again later."), "login")
			return
		}
	}

	user, err := ac.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if ac.limiter != nil && errors.Is(err, apperr.ErrUnauthorized) {
			ac.limiter.RecordFailure(ip, req.Email)
		}
		respondError(c, err, "login")
		return
	}
	if ac.limiter != nil {
		ac.limiter.RecordSuccess(ip, req.Email)
	}

	token, err := ac.tokens.Issue(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, entities.AuthResult{User: *user, Token: token})
}

// Me returns the signed-in user.
// GET /auth/me
func (ac *AuthController) Me(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("authentication required"), "me")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the session behind the presented token.
// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.tokens.Revoke(context.WithoutCancel(c.Request.Context()), auth.GetToken(c)); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	respondSuccess(c, "Logged out successfully")
}
