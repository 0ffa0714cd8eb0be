package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"sapar/internal/apperrors"
	"sapar/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// statusForKind maps error kinds onto HTTP statuses. Unclassified errors
// are internal failures.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error as JSON with the status its kind maps to.
func respondError(c *gin.Context, err error, logMsg string) {
	status := statusForKind(apperrors.KindOf(err))
	if status >= 500 {
		slog.Error(logMsg, "error", err)
		c.JSON(status, gin.H{"error": "Internal error, please retry"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// riderFromContext returns the authenticated user id set by BasicAuth.
func riderFromContext(c *gin.Context) (int64, bool) {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(int64); ok {
			return id, true
		}
	}
	return 0, false
}
