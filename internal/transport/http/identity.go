package handlers

import (
	"net/http"

	"careermate/internal/domain"
	"careermate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// requireIdentity writes 401 when no caller is attached to the request.
func requireIdentity(c *gin.Context) (domain.Identity, bool) {
	caller, ok := middleware.Identity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
	}
	return caller, ok
}
