package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cluedo-custom/internal/manager"
)

// statusFor maps the manager error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, manager.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, manager.ErrInvalidState), errors.Is(err, manager.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": msg})
}
