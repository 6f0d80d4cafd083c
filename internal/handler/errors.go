package handler

import (
	"errors"
	"net/http"

	"dropskills/internal/logger"
	"dropskills/internal/service"
	"dropskills/internal/storage"
	"dropskills/internal/wizard"

	"github.com/gin-gonic/gin"
)

// fail answers err with the status matching its kind. Unknown errors are
// logged and hidden behind a generic message.
func fail(c *gin.Context, err error) {
	var ve *wizard.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "step": ve.Step, "fields": ve.Fields})
		return
	}
	var pe *service.PolicyError
	if errors.As(err, &pe) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "password policy", "violations": pe.Violations})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, wizard.ErrBadInput),
		errors.Is(err, wizard.ErrUnknownStep):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotConfigured), errors.Is(err, storage.ErrDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrUpstream):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("http.internal_error", "path", c.Request.URL.Path, "err", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}
