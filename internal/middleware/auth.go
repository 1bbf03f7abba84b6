package middleware

import (
	"net/http"
	"strings"

	"careermate/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey   = "userId"
	usernameKey = "username"
)

type TokenValidator interface {
	ValidateAccess(token string) (domain.Identity, error)
}

// AuthMiddleware rejects the request with 401 unless it carries a valid Bearer access token.
func AuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		identity, err := v.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present and never aborts.
func OptionalAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if identity, err := v.ValidateAccess(token); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

// Identity returns the caller set by one of the auth middlewares.
func Identity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return domain.Identity{}, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: userID, Username: c.GetString(usernameKey)}, true
}

func setIdentity(c *gin.Context, identity domain.Identity) {
	c.Set(userIDKey, identity.UserID)
	c.Set(usernameKey, identity.Username)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
