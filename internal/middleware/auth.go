package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"finance_tracker/internal/auth"   // Identity verification
	"finance_tracker/internal/domain" // Identity type

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Gin context keys set by Authenticate
const (
	UserIDKey   = "userID"   // Verified subject identifier
	IdentityKey = "identity" // Full domain.Identity
)

// unauthorized is the single body used for every rejected credential
var unauthorized = gin.H{"error": "Unauthorized", "message": "Invalid or expired token"}

// Authenticate verifies the bearer credential and attaches the caller's identity
func Authenticate(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization")) // Extract the token string
		// Missing or malformed header is treated as absent
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
			return
		}
		identity, err := verifier.Verify(c.Request.Context(), token) // Verify with the identity provider
		if err != nil {
			// Detail stays in the logs
			logrus.WithFields(logrus.Fields{
				"path":  c.FullPath(),
				"error": err.Error(),
			}).Warn("Token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized)
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity)) // Identity for downstream code
		c.Set(UserIDKey, identity.UID)                                                      // Store userID in context
		c.Set(IdentityKey, identity)                                                        // Store identity in context
		c.Next()                                                                            // Proceed to the next handler
	}
}

// CurrentIdentity returns the identity attached by Authenticate
func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	return auth.IdentityFromContext(c.Request.Context())
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
