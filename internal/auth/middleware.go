package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"songbox/internal/domain"
	"songbox/internal/repository"
)

// AccessTokenCookie is the cookie carrying the session token.
const AccessTokenCookie = "access_token"

const currentUserKey = "current_user"

// Middleware resolves the session on every protected request: it extracts the
// token cookie, verifies it and loads the matching account.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle rejects requests without a valid session. Missing, malformed,
// tampered and expired tokens are indistinguishable to the client, as is a
// token whose account no longer exists. A valid token for a disabled account
// is rejected with 403 instead.
func (m *Middleware) Handle(c *gin.Context) {
	token, err := c.Cookie(AccessTokenCookie)
	if err != nil || token == "" {
		abortUnauthorized(c)
		return
	}

	username, err := m.tokens.Parse(token)
	if err != nil {
		abortUnauthorized(c)
		return
	}

	user, err := m.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortUnauthorized(c)
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if user.Disabled {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	c.Set(currentUserKey, user)
	c.Next()
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
}

// CurrentUser returns the account resolved by Handle for this request.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
