package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcuseden/slavajewlery-sub001/internal/repository"
	"github.com/marcuseden/slavajewlery-sub001/internal/service"
)

// respondError translates internal failures into the HTTP error taxonomy.
// Unexpected errors are logged server-side and surface as a generic 500 so
// provider error payloads never reach the response.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoImagePaths),
		errors.Is(err, service.ErrInvalidDesign),
		errors.Is(err, service.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})

	case errors.Is(err, service.ErrNotDesignOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not_design_owner"})

	case errors.Is(err, service.ErrUserSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "user_suspended"})

	case errors.Is(err, service.ErrShareNotFound),
		errors.Is(err, repository.ErrDesignNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})

	default:
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.Writer.Header().Get("X-Request-Id")).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
