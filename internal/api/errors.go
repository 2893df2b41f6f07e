package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"finance_tracker/internal/domain"     // Error taxonomy
	"finance_tracker/internal/logging"    // Log field names
	"finance_tracker/internal/middleware" // Shared error bodies

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// writeError maps a service error onto its status code and a {error, message} body.
// Anything outside the taxonomy is logged and answered with a generic 500.
func writeError(c *gin.Context, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Title, "message": verr.Message})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "Invalid or expired token"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": "You can only delete your own transactions"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": "Transaction not found"})
	default:
		logrus.WithFields(logrus.Fields{
			logging.FieldOperation: op,
			logging.FieldUserID:    c.GetString(middleware.UserIDKey),
			logging.FieldError:     err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, middleware.InternalError)
	}
}
