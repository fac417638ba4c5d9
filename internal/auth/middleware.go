package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// UserIDFromContext returns the user behind the current request, as resolved
// by RequireSession. Zero when the middleware did not run.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireSession resolves the session cookie against the Redis store and puts
// the owning user ID into the request context. Everything under /api/v1
// except the auth routes and the billing webhook runs behind this; a missing,
// expired, or unknown session answers 401 before any handler sees the
// request.
func RequireSession(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
