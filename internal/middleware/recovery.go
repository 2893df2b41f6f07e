package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InternalError is the body returned for any unexpected failure
var InternalError = gin.H{"error": "Internal server error", "message": "An unexpected error occurred"}

// Recovery turns a panic into a generic 500 and logs the cause
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"panic": recovered,
		}).Error("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, InternalError)
	})
}
