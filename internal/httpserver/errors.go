package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping-matrix/internal/docstore"
	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/recommend"
	"shopping-matrix/internal/service/catalog"
)

var errNotConfigured = errors.New("service not configured")

// statusFor maps domain and collaborator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidServiceMode),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, recommend.ErrEmptyPrompt),
		errors.Is(err, docstore.ErrInvalidCollection),
		errors.Is(err, docstore.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, recommend.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, recommend.ErrCreditsExhausted):
		return http.StatusPaymentRequired
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, recommend.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, errNotConfigured), errors.Is(err, recommend.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
