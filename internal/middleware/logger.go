package middleware

import (
	"time" // Request latency

	"finance_tracker/internal/logging" // Log field names

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RequestLogger logs one line per request, level chosen by status class
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Start timer
		c.Next()            // Process request

		status := c.Writer.Status()
		entry := logrus.WithFields(logrus.Fields{
			logging.FieldMethod:     c.Request.Method,
			logging.FieldPath:       c.Request.URL.Path,
			logging.FieldStatusCode: status,
			logging.FieldDuration:   time.Since(start).Milliseconds(),
			logging.FieldClientIP:   c.ClientIP(),
		})
		if uid := c.GetString(UserIDKey); uid != "" {
			entry = entry.WithField(logging.FieldUserID, uid)
		}

		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
