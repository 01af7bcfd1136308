package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rewardscraft/studio/internal/auth"
	"github.com/rewardscraft/studio/pkg/response"
)

const (
	// ContextSessionID is the key for the studio session id in gin context.
	ContextSessionID = "session_id"
	// SessionCookie carries the session token for the server-rendered page.
	SessionCookie = "studio_session"
)

// SessionToken validates the session token and stores its session id in the context.
// The token is read from the Authorization header, the session cookie or the token query parameter.
func SessionToken(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := TokenFromRequest(c)
		if !ok {
			response.Unauthorized(c, "missing session token")
			c.Abort()
			return
		}
		claims, err := tokens.Validate(raw)
		if err != nil {
			response.Unauthorized(c, "invalid or expired session token")
			c.Abort()
			return
		}
		c.Set(ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// TokenFromRequest extracts a session token without validating it.
func TokenFromRequest(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	if q := c.Query("token"); q != "" {
		return q, true
	}
	return "", false
}

// SessionID returns the session id set by SessionToken.
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
