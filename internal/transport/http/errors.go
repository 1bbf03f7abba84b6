package handlers

import (
	"errors"
	"log"
	"net/http"

	"careermate/internal/domain"

	"github.com/gin-gonic/gin"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"message"} with the status matching the error's kind. Classified
// errors carry a user-safe message; anything else gets fallback. In debug mode 5xx
// responses also carry the underlying detail as "error".
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(domain.KindOf(err))
	message := fallback

	var de *domain.Error
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &de):
		message = de.Message
	case errors.As(err, &ve):
		message = ve.Message
	}

	body := gin.H{"message": message}
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		if gin.IsDebugging() {
			body["error"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
}
