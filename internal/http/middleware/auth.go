package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-messenger-backend/internal/auth"
)

// userIDKey is the Gin context key under which the authenticated user ID is
// stored. Logging and rate limiting read it to attribute requests.
const userIDKey = "userID"

// RequireAuth returns a Gin middleware that validates a Bearer access token
// and threads the authenticated identity through the request.
//
// On success the user ID is stored in the Gin context under "userID" and
// injected into the request's context.Context via auth.WithIdentity, so code
// below the HTTP layer can recover the caller without touching Gin. Requests
// without a valid token are rejected with 401 before reaching the handler.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.ParseAccessToken(bearerToken(c.GetHeader("Authorization")), secret)
		if err != nil {
			rid, _ := c.Get(requestIDKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": asString(rid),
				"code":       "unauthorized",
				"message":    "missing or invalid access token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), userID))
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. Returns "" when the scheme is absent or not Bearer.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
