package studio

import (
	"github.com/gin-gonic/gin"

	"github.com/rewardscraft/studio/internal/middleware"
	"github.com/rewardscraft/studio/pkg/response"
)

// ContextSession is the context key for the resolved *Session.
const ContextSession = "studio_session"

// RequireSession resolves the session named by the token. Call after middleware.SessionToken.
func RequireSession(registry *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.SessionID(c)
		if !ok {
			response.Unauthorized(c, "missing session token")
			c.Abort()
			return
		}
		s, err := registry.Get(id)
		if err != nil {
			response.NotFound(c, "session not found")
			c.Abort()
			return
		}
		c.Set(ContextSession, s)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *Session {
	return c.MustGet(ContextSession).(*Session)
}
